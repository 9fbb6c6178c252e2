package resolve

import (
	"testing"

	"orglit/internal/document"
	"orglit/internal/manifest"
)

var testDocs = manifest.MapSource{
	"content/main.org": "#+NAME: calculator\n#+begin_src typescript\nconst a = 1;\n#+end_src\n",
	"content/utils.org": "#+NAME: helpers\n#+begin_src js\nexport const id = v => v;\n#+end_src\n" +
		"#+NAME: widgets\n#+begin_src tsx :mode client\nexport const W = () => null;\n#+end_src\n",
	"content/nested/page.org": "#+NAME: inner\n#+begin_src js\nx\n#+end_src\n",
}

func testManifest(t *testing.T) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Build("content",
		[]string{"content/main.org", "content/utils.org", "content/nested/page.org"},
		testDocs, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestResolveRelativeImport(t *testing.T) {
	m := testManifest(t)
	r, err := Resolve("./utils.org?name=helpers", Document("content/main.org"), m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.OrgFilePath != "content/utils.org" {
		t.Fatalf("orgFilePath = %q", r.OrgFilePath)
	}
	if r.Block.Name != "helpers" {
		t.Fatalf("block = %+v", r.Block)
	}
	if r.Extension != "js" {
		t.Fatalf("extension = %q", r.Extension)
	}
	if r.VirtualID != "virtual:default/content/utils.org/helpers.js" {
		t.Fatalf("virtualID = %q", r.VirtualID)
	}
}

func TestResolveAbsoluteImport(t *testing.T) {
	m := testManifest(t)
	r, err := Resolve("/content/utils.org?name=widgets", NoImporter, m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Block-level mode parameter flows into the identifier.
	if r.VirtualID != "virtual:client/content/utils.org/widgets.tsx" {
		t.Fatalf("virtualID = %q", r.VirtualID)
	}
}

func TestResolveIDAgreesWithManifestMode(t *testing.T) {
	// A manifest built with a ModeFunc (e.g. a configured default mode)
	// must hand out identifiers that are ByVirtualID keys; otherwise a
	// resolved import cannot be looked up again.
	mode := func(b document.Block) string {
		if m, ok := b.Parameters.Get("mode"); ok && m != "" {
			return m
		}
		return "server"
	}
	m, err := manifest.Build("content",
		[]string{"content/main.org", "content/utils.org", "content/nested/page.org"},
		testDocs, mode)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := Resolve("./utils.org?name=helpers", Document("content/main.org"), m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.VirtualID != "virtual:server/content/utils.org/helpers.js" {
		t.Fatalf("virtualID = %q", r.VirtualID)
	}
	if b, ok := m.Lookup(r.VirtualID); !ok || b != r.Block {
		t.Fatalf("resolver-issued id %q is not a manifest key", r.VirtualID)
	}

	// A block-level :mode parameter still wins under this ModeFunc.
	r, err = Resolve("./utils.org?name=widgets", Document("content/main.org"), m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.VirtualID != "virtual:client/content/utils.org/widgets.tsx" {
		t.Fatalf("virtualID = %q", r.VirtualID)
	}
	if _, ok := m.Lookup(r.VirtualID); !ok {
		t.Fatalf("resolver-issued id %q is not a manifest key", r.VirtualID)
	}
}

func TestResolveParentRelative(t *testing.T) {
	m := testManifest(t)
	r, err := Resolve("../utils.org?name=helpers", Document("content/nested/page.org"), m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.OrgFilePath != "content/utils.org" {
		t.Fatalf("orgFilePath = %q", r.OrgFilePath)
	}
}

func TestResolveExtraQueryKeysPassThrough(t *testing.T) {
	m := testManifest(t)
	r, err := Resolve("./utils.org?name=helpers&lazy=true&tag=v2", Document("content/main.org"), m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Config["lazy"] != "true" || r.Config["tag"] != "v2" {
		t.Fatalf("config = %v", r.Config)
	}
}

func TestResolveErrorTaxonomy(t *testing.T) {
	m := testManifest(t)
	cases := []struct {
		imp      string
		importer ImporterRef
		want     ErrorCode
	}{
		{"./utils.org", Document("content/main.org"), ErrInvalidSyntax},
		{"./utils.org?foo=bar", Document("content/main.org"), ErrMissingName},
		{"./missing.org?name=x", Document("content/main.org"), ErrOrgFileNotFound},
		{"./utils.org?name=ghost", Document("content/main.org"), ErrBlockNotFound},
		{"./utils.org?name=helpers", NoImporter, ErrInvalidSyntax},
	}
	for _, c := range cases {
		_, err := Resolve(c.imp, c.importer, m)
		if err == nil {
			t.Fatalf("Resolve(%q) succeeded, want %s", c.imp, c.want)
		}
		if got := CodeOf(err); got != c.want {
			t.Fatalf("Resolve(%q) code = %s, want %s", c.imp, got, c.want)
		}
	}
}

func TestResolveBlockNotFoundListsAlternatives(t *testing.T) {
	m := testManifest(t)
	_, err := Resolve("./utils.org?name=ghost", Document("content/main.org"), m)
	re, ok := err.(*Error)
	if !ok {
		t.Fatalf("err = %v", err)
	}
	if len(re.Known) != 2 || re.Known[0] != "helpers" || re.Known[1] != "widgets" {
		t.Fatalf("known = %v", re.Known)
	}
}

func TestClassifyImporter(t *testing.T) {
	cases := []struct {
		in   string
		want ImporterKind
	}{
		{"", ImporterNone},
		{"content/main.org", ImporterDocument},
		{"virtual:default/content/main.org/calculator.ts", ImporterVirtualModule},
		{"tmp/.orglit-cache/default/content/main.org/calculator.ts", ImporterCachePath},
	}
	for _, c := range cases {
		if got := ClassifyImporter(c.in).Kind; got != c.want {
			t.Fatalf("ClassifyImporter(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestResolveFromVirtualModuleImporter(t *testing.T) {
	m := testManifest(t)
	imp := ClassifyImporter("virtual:default/content/main.org/calculator.ts")
	r, err := Resolve("./utils.org?name=helpers", imp, m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.OrgFilePath != "content/utils.org" {
		t.Fatalf("orgFilePath = %q", r.OrgFilePath)
	}
}

func TestResolveFromCachePathImporter(t *testing.T) {
	m := testManifest(t)
	imp := ClassifyImporter("tmp/.orglit-cache/default/content/nested/page.org/inner.js")
	r, err := Resolve("../utils.org?name=helpers", imp, m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.OrgFilePath != "content/utils.org" {
		t.Fatalf("orgFilePath = %q", r.OrgFilePath)
	}
}

func TestResolveIsPure(t *testing.T) {
	m := testManifest(t)
	before := len(m.ByVirtualID)
	_, _ = Resolve("./utils.org?name=ghost", Document("content/main.org"), m)
	_, _ = Resolve("./utils.org?name=helpers", Document("content/main.org"), m)
	if len(m.ByVirtualID) != before || len(m.ByFile) != 3 {
		t.Fatalf("manifest mutated by resolution")
	}
}
