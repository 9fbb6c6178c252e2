package document

import "testing"

const sampleDoc = `* Notes

#+NAME: calculator
#+begin_src typescript :mode client
const x = 1;
console.log(x);
#+end_src

Some prose.

#+begin_src js :name helpers
export const id = (v) => v;
#+end_src
`

func TestExtractBasic(t *testing.T) {
	blocks := Extract("content/main.org", sampleDoc)
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}

	b0 := blocks[0]
	if b0.Name != "calculator" {
		t.Fatalf("name = %q", b0.Name)
	}
	if b0.Language != "typescript" {
		t.Fatalf("language = %q", b0.Language)
	}
	if b0.StartLine != 4 {
		t.Fatalf("startLine = %d", b0.StartLine)
	}
	if b0.Content != "const x = 1;\nconsole.log(x);\n" {
		t.Fatalf("content = %q", b0.Content)
	}
	if b0.Index != 0 {
		t.Fatalf("index = %d", b0.Index)
	}
	if mode := b0.Mode(); mode != "client" {
		t.Fatalf("mode = %q", mode)
	}

	b1 := blocks[1]
	if b1.Index != 1 {
		t.Fatalf("index = %d", b1.Index)
	}
	if b1.Name != "helpers" {
		t.Fatalf("param name = %q", b1.Name)
	}
	if b1.Mode() != "default" {
		t.Fatalf("mode = %q", b1.Mode())
	}
}

func TestExtractDeterministic(t *testing.T) {
	a := Extract("d.org", sampleDoc)
	b := Extract("d.org", sampleDoc)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Index != b[i].Index || a[i].Name != b[i].Name ||
			a[i].Content != b[i].Content || a[i].StartLine != b[i].StartLine {
			t.Fatalf("block %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestExtractNamePriority(t *testing.T) {
	// A preceding #+NAME: directive wins over the :name parameter.
	doc := "#+NAME: fromdirective\n#+begin_src js :name fromparam\nx\n#+end_src\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if blocks[0].Name != "fromdirective" {
		t.Fatalf("name = %q", blocks[0].Name)
	}
}

func TestExtractNameClearedByProse(t *testing.T) {
	doc := "#+NAME: stale\nsome prose line\n#+begin_src js\nx\n#+end_src\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if blocks[0].Name != "" {
		t.Fatalf("name = %q, want unnamed", blocks[0].Name)
	}
}

func TestExtractNameSurvivesBlanksAndDirectives(t *testing.T) {
	doc := "#+NAME: kept\n\n#+ATTR_HTML: :width 100\n#+begin_src js\nx\n#+end_src\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 || blocks[0].Name != "kept" {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestExtractSkipsExportRegions(t *testing.T) {
	doc := "#+begin_export html\n#+begin_src js\nnot code\n#+end_src\n#+end_export\n" +
		"#+begin_src js\nreal\n#+end_src\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].Content != "real\n" {
		t.Fatalf("content = %q", blocks[0].Content)
	}
}

func TestExtractUnterminatedFence(t *testing.T) {
	// One fence never closed, followed by nothing extractable from it; the
	// well-formed block before it must still come through, without error.
	doc := "#+begin_src js\ngood\n#+end_src\n#+begin_src ts\ndangling\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].Content != "good\n" {
		t.Fatalf("content = %q", blocks[0].Content)
	}
}

func TestExtractDanglingFenceBeforeWellFormedBlock(t *testing.T) {
	// The dangling opener must not swallow the well-formed block after it:
	// a second opener ends the dangling fence, and only the closed block
	// is extracted.
	doc := "#+begin_src python\nabandoned\n#+begin_src js\ngood\n#+end_src\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Language != "js" {
		t.Fatalf("language = %q, want js", b.Language)
	}
	if b.Content != "good\n" {
		t.Fatalf("content = %q, want %q", b.Content, "good\n")
	}
	if b.Index != 0 {
		t.Fatalf("index = %d, want 0", b.Index)
	}
	if b.StartLine != 3 {
		t.Fatalf("startLine = %d, want 3", b.StartLine)
	}
}

func TestExtractConsecutiveDanglingFences(t *testing.T) {
	// Several dangling openers in a row; only the final, closed fence
	// yields a block, with its own parameters.
	doc := "#+begin_src ts\na\n#+begin_src js\nb\n#+begin_src tsx :name widget\nc\n#+end_src\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].Language != "tsx" || blocks[0].Name != "widget" || blocks[0].Content != "c\n" {
		t.Fatalf("block = %+v", blocks[0])
	}
}

func TestExtractCaseInsensitiveMarkers(t *testing.T) {
	doc := "#+NAME: up\n#+BEGIN_SRC JS\nx\n#+END_SRC\n"
	blocks := Extract("d.org", doc)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	if blocks[0].Language != "js" {
		t.Fatalf("language = %q, want lowercased", blocks[0].Language)
	}
	if blocks[0].Name != "up" {
		t.Fatalf("name = %q", blocks[0].Name)
	}
}

func TestParseParams(t *testing.T) {
	p := ParseParams(":mode client :name calc :exports both")
	if len(p) != 3 {
		t.Fatalf("params = %+v", p)
	}
	if p[0].Key != "mode" || p[0].Value != "client" {
		t.Fatalf("p[0] = %+v", p[0])
	}
	if v, ok := p.Get("name"); !ok || v != "calc" {
		t.Fatalf("name = %q ok=%v", v, ok)
	}
	if got := ParseParams(""); got != nil {
		t.Fatalf("empty params = %+v", got)
	}
	if got := ParseParams("   "); got != nil {
		t.Fatalf("blank params = %+v", got)
	}
}

func TestParseParamsMultiWordValue(t *testing.T) {
	p := ParseParams(":title hello world :mode ssr")
	if v, _ := p.Get("title"); v != "hello world" {
		t.Fatalf("title = %q", v)
	}
	if v, _ := p.Get("mode"); v != "ssr" {
		t.Fatalf("mode = %q", v)
	}
}

func TestBlockLineCount(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a\n", 1},
		{"a", 1},
		{"a\nb\n", 2},
		{"a\nb", 2},
	}
	for _, c := range cases {
		b := Block{Content: c.content}
		if got := b.LineCount(); got != c.want {
			t.Fatalf("LineCount(%q) = %d, want %d", c.content, got, c.want)
		}
	}
}
