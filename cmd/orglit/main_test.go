package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orglit/internal/document"
	"orglit/internal/transform"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	manifest := "[project]\ncontent_root = \"content\"\n\n[cache]\ndir = \"tmp/.orglit-cache\"\n"
	if err := os.WriteFile(filepath.Join(root, "orglit.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	docs := map[string]string{
		"content/utils.org": "* Utilities\n\n#+NAME: helpers\n#+begin_src typescript\nexport const greet = () => \"hi\";\n#+end_src\n",
		"content/app.org":   "* App\n\n#+begin_src tsx :mode client\nimport { greet } from \"./utils.org?name=helpers\";\nexport default greet;\n#+end_src\n",
	}
	for rel, text := range docs {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatalf("write doc: %v", err)
		}
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIndexThenStatusRoundTrip(t *testing.T) {
	root := writeProject(t)

	out, err := run(t, "index", "-C", root)
	if err != nil {
		t.Fatalf("index: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Indexed 2 documents") {
		t.Fatalf("index output: %s", out)
	}

	out, err = run(t, "status", "-C", root, "--json")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	var delta struct {
		Added   []any `json:"added"`
		Changed []any `json:"changed"`
	}
	if jerr := json.Unmarshal([]byte(out), &delta); jerr != nil {
		t.Fatalf("status JSON: %v\n%s", jerr, out)
	}
	if len(delta.Added) != 0 || len(delta.Changed) != 0 {
		t.Fatalf("expected clean status, got %s", out)
	}

	// Mutate a document and expect a change.
	doc := filepath.Join(root, "content", "utils.org")
	if err := os.WriteFile(doc, []byte("* Utilities\n\n#+NAME: helpers\n#+begin_src typescript\nexport const greet = () => \"hello\";\n#+end_src\n"), 0o644); err != nil {
		t.Fatalf("rewrite doc: %v", err)
	}
	out, err = run(t, "status", "-C", root, "--json=false", "--diff")
	if err != nil {
		t.Fatalf("status after edit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "changed=1") || !strings.Contains(out, "utils.org") {
		t.Fatalf("status output: %s", out)
	}
	if !strings.Contains(out, "+export const greet = () => \"hello\";") {
		t.Fatalf("diff body missing:\n%s", out)
	}
}

func TestBlocksListsVirtualIDs(t *testing.T) {
	root := writeProject(t)
	out, err := run(t, "blocks", "-C", root, "--json")
	if err != nil {
		t.Fatalf("blocks: %v\n%s", err, out)
	}
	var rows []blockRow
	if jerr := json.Unmarshal([]byte(out), &rows); jerr != nil {
		t.Fatalf("blocks JSON: %v\n%s", jerr, out)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	ids := map[string]bool{}
	for _, r := range rows {
		ids[r.VirtualID] = true
	}
	if !ids["virtual:default/utils.org/helpers.ts"] {
		t.Fatalf("named block id missing: %+v", rows)
	}
	if !ids["virtual:client/app.org/0.tsx"] {
		t.Fatalf("mode-parameter id missing: %+v", rows)
	}
}

func TestResolveCommand(t *testing.T) {
	root := writeProject(t)
	out, err := run(t, "resolve", "-C", root, "--from", "app.org", "./utils.org?name=helpers", "--json")
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, out)
	}
	var payload struct {
		VirtualID   string `json:"virtualId"`
		OrgFilePath string `json:"orgFilePath"`
	}
	if jerr := json.Unmarshal([]byte(out), &payload); jerr != nil {
		t.Fatalf("resolve JSON: %v\n%s", jerr, out)
	}
	if payload.VirtualID != "virtual:default/utils.org/helpers.ts" || payload.OrgFilePath != "utils.org" {
		t.Fatalf("payload = %+v", payload)
	}

	if _, err := run(t, "resolve", "-C", root, "--from", "app.org", "./utils.org?name=missing", "--json=false"); err == nil {
		t.Fatalf("expected resolution failure for unknown block")
	}
}

func TestConfiguredDefaultModeFlowsEverywhere(t *testing.T) {
	root := t.TempDir()
	manifest := "[project]\ncontent_root = \"content\"\ndefault_mode = \"server\"\n"
	if err := os.WriteFile(filepath.Join(root, "orglit.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "content"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := "#+NAME: helpers\n#+begin_src typescript\nexport const x = 1;\n#+end_src\n"
	if err := os.WriteFile(filepath.Join(root, "content", "utils.org"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	want := "virtual:server/utils.org/helpers.ts"

	out, err := run(t, "blocks", "-C", root, "--json")
	if err != nil {
		t.Fatalf("blocks: %v\n%s", err, out)
	}
	var rows []blockRow
	if jerr := json.Unmarshal([]byte(out), &rows); jerr != nil {
		t.Fatalf("blocks JSON: %v\n%s", jerr, out)
	}
	if len(rows) != 1 || rows[0].VirtualID != want || rows[0].Mode != "server" {
		t.Fatalf("rows = %+v", rows)
	}

	out, err = run(t, "resolve", "-C", root, "--from", "utils.org", "./utils.org?name=helpers", "--json")
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, out)
	}
	var payload struct {
		VirtualID string `json:"virtualId"`
	}
	if jerr := json.Unmarshal([]byte(out), &payload); jerr != nil {
		t.Fatalf("resolve JSON: %v\n%s", jerr, out)
	}
	if payload.VirtualID != want {
		t.Fatalf("resolver id %q, blocks id %q", payload.VirtualID, want)
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		data string
		want int
	}{
		{"", 0},
		{"one line, no newline", 1},
		{"one line\n", 1},
		{"a\nb\n", 2},
		{"a\nb", 2},
	}
	for _, c := range cases {
		if got := countLines([]byte(c.data)); got != c.want {
			t.Fatalf("countLines(%q) = %d, want %d", c.data, got, c.want)
		}
	}
}

func TestModeFuncFallback(t *testing.T) {
	fn := modeFunc(transform.Default(), "server")
	plain := document.Block{Language: "ts"}
	if got := fn(plain); got != "server" {
		t.Fatalf("fallback mode = %q", got)
	}
	explicit := document.Block{Language: "ts", Parameters: document.Params{{Key: "mode", Value: "client"}}}
	if got := fn(explicit); got != "client" {
		t.Fatalf("explicit mode = %q", got)
	}
}
