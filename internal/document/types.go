// Package document defines the core data types for extracted source blocks
// and implements fence extraction from org markup text.
package document

// Param is a single block-level directive. Parameters keep document order,
// so they are stored as a slice rather than a map.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Params is the ordered parameter list of a block.
type Params []Param

// Get returns the value for key and whether it was present. First occurrence
// wins when a key is repeated.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Block is one extracted code fragment.
//
// Index values are dense and monotonic per document and are assigned in
// document order. Re-extracting a document invalidates all previously issued
// indices for that document; derived virtual identifiers must be regenerated,
// never patched.
type Block struct {
	OrgFilePath string `json:"orgFilePath"`          // document-root-relative path, forward slashes
	Index       int    `json:"index"`                // 0-based ordinal among all blocks in the document
	Name        string `json:"name,omitempty"`       // optional user-given identifier
	Language    string `json:"language,omitempty"`   // normalized lowercase language tag
	Content     string `json:"content"`              // raw text between the fence markers
	Parameters  Params `json:"parameters,omitempty"` // ordered block-level directives
	StartLine   int    `json:"startLine"`            // 1-based line of the fence-open line
}

// Mode returns the block's transform mode parameter, defaulting to "default".
func (b Block) Mode() string {
	if m, ok := b.Parameters.Get("mode"); ok && m != "" {
		return m
	}
	return "default"
}

// LineCount returns the number of lines in the block content. A trailing
// newline does not start an extra line; empty content has zero lines.
func (b Block) LineCount() int {
	if b.Content == "" {
		return 0
	}
	n := 0
	for i := 0; i < len(b.Content); i++ {
		if b.Content[i] == '\n' {
			n++
		}
	}
	if b.Content[len(b.Content)-1] != '\n' {
		n++
	}
	return n
}
