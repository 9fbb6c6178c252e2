// Package transform decides which transform mode a block's virtual module is
// generated under.
//
// Matching is an explicit ordered rule list with a declared match kind per
// rule, evaluated in a single pass: first matching rule wins. Rules either
// test a predicate against the whole block or match on the block's language.
package transform

import "orglit/internal/document"

// MatchKind declares how a rule matches.
type MatchKind int

const (
	// MatchPredicate rules run an arbitrary predicate over the block.
	MatchPredicate MatchKind = iota
	// MatchLanguages rules match the block's normalized language tag.
	MatchLanguages
)

// Rule is one entry in the ordered list.
type Rule struct {
	Name      string
	Kind      MatchKind
	Predicate func(document.Block) bool // MatchPredicate only
	Languages []string                  // MatchLanguages only
	// Mode is the transform mode a match yields. When ModeFrom is set it
	// wins, computing the mode from the block itself.
	Mode     string
	ModeFrom func(document.Block) string
}

func (r Rule) matches(b document.Block) bool {
	switch r.Kind {
	case MatchPredicate:
		return r.Predicate != nil && r.Predicate(b)
	case MatchLanguages:
		for _, l := range r.Languages {
			if l == b.Language {
				return true
			}
		}
	}
	return false
}

func (r Rule) mode(b document.Block) string {
	if r.ModeFrom != nil {
		return r.ModeFrom(b)
	}
	return r.Mode
}

// Rules is the ordered rule list.
type Rules []Rule

// ModeFor evaluates the list in order and returns the first match's mode,
// or "default" when nothing matches.
func (rs Rules) ModeFor(b document.Block) string {
	for _, r := range rs {
		if r.matches(b) {
			return r.mode(b)
		}
	}
	return "default"
}

// Default returns the standard rule list: an explicit :mode parameter wins,
// then any script language falls through to the default mode.
func Default() Rules {
	return Rules{
		{
			Name: "explicit-mode-parameter",
			Kind: MatchPredicate,
			Predicate: func(b document.Block) bool {
				m, ok := b.Parameters.Get("mode")
				return ok && m != ""
			},
			ModeFrom: func(b document.Block) string {
				m, _ := b.Parameters.Get("mode")
				return m
			},
		},
		{
			Name:      "script-languages",
			Kind:      MatchLanguages,
			Languages: []string{"typescript", "ts", "tsx", "jsx", "javascript", "js"},
			Mode:      "default",
		},
	}
}
