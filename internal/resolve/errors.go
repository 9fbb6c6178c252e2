// Package resolve — typed import-resolution errors.
//
// The error taxonomy is a closed set of four codes. Callers must branch on
// Code only; message text is for humans and carries the offending import
// string plus, where available, the legitimately known alternatives.
package resolve

import (
	"fmt"
	"strings"
)

// ErrorCode identifies one of the four import-resolution failure classes.
type ErrorCode string

const (
	// ErrInvalidSyntax: the import string has no query string at all, or no
	// importer was supplied for a relative path.
	ErrInvalidSyntax ErrorCode = "INVALID_SYNTAX"
	// ErrMissingName: a query string is present but carries no name= key.
	ErrMissingName ErrorCode = "MISSING_NAME"
	// ErrOrgFileNotFound: the resolved document path has no manifest entry.
	ErrOrgFileNotFound ErrorCode = "ORG_FILE_NOT_FOUND"
	// ErrBlockNotFound: the document exists but has no block with that name.
	ErrBlockNotFound ErrorCode = "BLOCK_NOT_FOUND"
)

// Error is a typed import-resolution failure.
type Error struct {
	Code   ErrorCode
	Import string   // the offending import string, verbatim
	Detail string   // short human-readable explanation
	Known  []string // legitimate alternatives (e.g. block names), sorted
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %q", e.Code, e.Import)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Known) > 0 {
		fmt.Fprintf(&b, " (known: %s)", strings.Join(e.Known, ", "))
	}
	return b.String()
}

// CodeOf extracts the resolution code from err, or "" when err is not a
// resolver error.
func CodeOf(err error) ErrorCode {
	if re, ok := err.(*Error); ok {
		return re.Code
	}
	return ""
}
