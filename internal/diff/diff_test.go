package diff

import (
	"strings"
	"testing"
)

func TestUnifiedBasic(t *testing.T) {
	a := []byte("one\ntwo\nthree\n")
	b := []byte("one\n2\nthree\n")
	body, oversize := Unified("content/a.org", "content/a.org", a, b, Options{})
	if oversize {
		t.Fatalf("unexpected oversize")
	}
	if !strings.Contains(body, "--- content/a.org") || !strings.Contains(body, "+++ content/a.org") {
		t.Fatalf("missing headers:\n%s", body)
	}
	if !strings.Contains(body, "-two\n") || !strings.Contains(body, "+2\n") {
		t.Fatalf("missing change lines:\n%s", body)
	}
}

func TestUnifiedOversize(t *testing.T) {
	a := []byte(strings.Repeat("x\n", 100))
	body, oversize := Unified("a", "b", a, a, Options{MaxBytes: 16})
	if !oversize {
		t.Fatalf("expected oversize")
	}
	if !strings.Contains(body, "diff omitted") {
		t.Fatalf("placeholder missing:\n%s", body)
	}
}

func TestAddedAndRemoved(t *testing.T) {
	content := []byte("* New doc\n")

	add, _ := Added("content/new.org", content, Options{})
	if !strings.Contains(add, "--- /dev/null") || !strings.Contains(add, "+* New doc\n") {
		t.Fatalf("Added:\n%s", add)
	}

	rem, _ := Removed("content/old.org", content, Options{})
	if !strings.Contains(rem, "+++ /dev/null") || !strings.Contains(rem, "-* New doc\n") {
		t.Fatalf("Removed:\n%s", rem)
	}
}

func TestSplitLinesKeepNL(t *testing.T) {
	got := splitLinesKeepNL("a\nb")
	if len(got) != 2 || got[0] != "a\n" || got[1] != "b" {
		t.Fatalf("got %#v", got)
	}
	if len(splitLinesKeepNL("")) != 0 {
		t.Fatalf("empty input should yield no lines")
	}
}
