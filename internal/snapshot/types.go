// Package snapshot defines the core data types used by content-root
// snapshotting and delta computation.
package snapshot

// DocFile represents a single document entry in a snapshot. Path is a
// content-root-relative path, Hash is a lowercase hex sha256 of the document
// text, Lines is the total line count, and Blocks is how many blocks the
// document extracted to.
type DocFile struct {
	Path   string `json:"path"`
	Hash   string `json:"hash"`
	Lines  int    `json:"lines"`
	Blocks int    `json:"blocks"`
}

// Snapshot captures the state of a content root at a specific moment.
// Root is a human-friendly identifier (the content root's base name).
// Created is an ISO-8601 timestamp (UTC). FormatVersion versions the
// snapshot schema over time.
type Snapshot struct {
	Root          string    `json:"root"`
	Created       string    `json:"created"`
	FormatVersion string    `json:"formatVersion,omitempty"`
	Files         []DocFile `json:"files"`
}

// Rename is a one-to-one pairing of a moved document (same content hash).
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
	Hash string `json:"hash"`
}

// Change is a document whose path is unchanged but whose content differs.
type Change struct {
	Path         string `json:"path"`
	HashBefore   string `json:"hashBefore"`
	HashAfter    string `json:"hashAfter"`
	BlocksBefore int    `json:"blocksBefore"`
	BlocksAfter  int    `json:"blocksAfter"`
}

// Delta describes the minimal change set from a previous snapshot to the
// current one. The sets are mutually consistent after rename de-duplication:
//
//   - Added: documents present now that were not in the previous snapshot
//   - Removed: documents no longer present
//   - Changed: same path, different content hash
//   - Renamed: moved without content change
type Delta struct {
	Added   []DocFile `json:"added"`
	Removed []DocFile `json:"removed"`
	Renamed []Rename  `json:"renamed"`
	Changed []Change  `json:"changed"`
}

// Empty reports whether the delta carries no changes at all.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 &&
		len(d.Renamed) == 0 && len(d.Changed) == 0
}
