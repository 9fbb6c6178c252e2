// Package position translates between linear offsets and (line, column)
// positions inside a block's text, and between block-local and
// document-absolute positions.
//
// All positions are 0-based internally. Out-of-range inputs yield "no
// applicable result" (a false or nil return), never a panic: editor
// integrations treat that as the absence of a mapping, not an error.
//
// The round-trip invariant external tooling depends on: for any document
// position P inside a block's byte range,
//
//	BlockToOrg(id, OrgToBlock(doc, P).Position).Position == P
//
// exactly, in both line and column.
package position

import (
	"strings"

	"orglit/internal/document"
	"orglit/internal/manifest"
	"orglit/internal/vids"
)

// Position is a 0-based (line, column) pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// OffsetToPosition converts a linear byte offset within text to a position.
// Valid offsets are 0..len(text); anything else reports false.
func OffsetToPosition(text string, offset int) (Position, bool) {
	if offset < 0 || offset > len(text) {
		return Position{}, false
	}
	line, col := 0, 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return Position{Line: line, Column: col}, true
}

// PositionToOffset is the inverse of OffsetToPosition. A column one past the
// end of a line (the caret after the last character) is valid.
func PositionToOffset(text string, pos Position) (int, bool) {
	if pos.Line < 0 || pos.Column < 0 {
		return 0, false
	}
	offset := 0
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return 0, false
		}
		offset += nl + 1
	}
	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}
	if pos.Column > lineEnd {
		return 0, false
	}
	return offset + pos.Column, true
}

// BlockPosition is a position expressed relative to a block's own text.
type BlockPosition struct {
	Block    *document.Block
	Position Position
}

// OrgPosition is a position expressed in a document's own coordinates.
type OrgPosition struct {
	OrgFilePath string
	Position    Position
}

// OrgToBlock maps a document-relative position to the innermost enclosing
// block: among blocks with StartLine <= line, the one with the largest
// StartLine. The block-local line is the document line minus StartLine.
// It returns nil when no block's range contains the position.
func OrgToBlock(orgFilePath string, pos Position, m *manifest.Manifest) *BlockPosition {
	var best *document.Block
	for _, b := range m.BlocksFor(orgFilePath) {
		if b.StartLine > pos.Line {
			continue
		}
		if best == nil || b.StartLine > best.StartLine {
			best = b
		}
	}
	if best == nil {
		return nil
	}

	local := Position{Line: pos.Line - best.StartLine, Column: pos.Column}
	if local.Line < 1 || local.Line > best.LineCount() {
		return nil
	}
	if _, ok := PositionToOffset(best.Content, Position{Line: local.Line - 1, Column: local.Column}); !ok {
		return nil
	}
	return &BlockPosition{Block: best, Position: local}
}

// BlockToOrg maps a block-local position back to the owning document by
// reverse-decoding the virtual identifier and adding StartLine to the line.
// It returns nil when the identifier does not decode to a known block.
func BlockToOrg(virtualID string, pos Position, m *manifest.Manifest) *OrgPosition {
	if _, ok := vids.Decode(virtualID); !ok {
		return nil
	}
	b, ok := m.Lookup(virtualID)
	if !ok {
		return nil
	}
	return &OrgPosition{
		OrgFilePath: b.OrgFilePath,
		Position:    Position{Line: pos.Line + b.StartLine, Column: pos.Column},
	}
}
