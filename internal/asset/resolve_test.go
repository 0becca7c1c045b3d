package asset

import (
	"net/url"
	"testing"
)

func TestResolve_Relative(t *testing.T) {
	got, ok := Resolve("https://ex.com/v1/repo.json", "img/a.png")
	if !ok {
		t.Fatal("expected resolved asset")
	}
	if got != "https://ex.com/v1/img/a.png" {
		t.Errorf("got %q, want %q", got, "https://ex.com/v1/img/a.png")
	}
}

func TestResolve_RootRelative(t *testing.T) {
	got, _ := Resolve("https://ex.com/v1/repo.json", "/static/b.png")
	if got != "https://ex.com/static/b.png" {
		t.Errorf("got %q", got)
	}
}

func TestResolve_ParentDir(t *testing.T) {
	got, _ := Resolve("https://ex.com/v1/sub/repo.json", "../icon.png")
	if got != "https://ex.com/v1/icon.png" {
		t.Errorf("got %q", got)
	}
}

func TestResolve_AbsoluteOverridesBase(t *testing.T) {
	got, ok := Resolve("https://ex.com/v1/repo.json", "https://cdn.other.net/x.png")
	if !ok || got != "https://cdn.other.net/x.png" {
		t.Errorf("got %q (%v)", got, ok)
	}
}

func TestResolve_SchemeRelative(t *testing.T) {
	got, _ := Resolve("https://ex.com/v1/repo.json", "//cdn.other.net/x.png")
	if got != "https://cdn.other.net/x.png" {
		t.Errorf("got %q", got)
	}
}

func TestResolve_EmptyIsAbsent(t *testing.T) {
	for _, ref := range []string{"", "   "} {
		got, ok := Resolve("https://ex.com/v1/repo.json", ref)
		if ok || got != "" {
			t.Errorf("Resolve(%q) = %q, %v; want absent", ref, got, ok)
		}
	}
}

func TestResolve_MalformedIsAbsent(t *testing.T) {
	if got, ok := Resolve("https://ex.com/v1/repo.json", "http://[::1"); ok {
		t.Errorf("malformed ref resolved to %q", got)
	}
	if got, ok := Resolve("://bad base", "a.png"); ok {
		t.Errorf("malformed base resolved to %q", got)
	}
}

func TestResolve_RelativeBaseIsAbsent(t *testing.T) {
	if got, ok := Resolve("repo.json", "a.png"); ok {
		t.Errorf("relative base resolved to %q", got)
	}
}

func TestResolve_FileBase(t *testing.T) {
	got, ok := Resolve("file:///srv/repos/v6/repo.json", "icons/p.png")
	if !ok || got != "file:///srv/repos/v6/icons/p.png" {
		t.Errorf("got %q (%v)", got, ok)
	}
}

func TestResolve_AlwaysAbsolute(t *testing.T) {
	refs := []string{"a.png", "./b/c.png", "../../d.png", "?q=1", "#frag", "/e", "https://x.org/f"}
	for _, ref := range refs {
		got, ok := Resolve("https://ex.com/v1/repo.json", ref)
		if !ok {
			t.Errorf("Resolve(%q) absent", ref)
			continue
		}
		u, err := url.Parse(got)
		if err != nil || !u.IsAbs() {
			t.Errorf("Resolve(%q) = %q, not absolute", ref, got)
		}
	}
}

func TestResolveAll_SkipsAbsent(t *testing.T) {
	got := ResolveAll("https://ex.com/r/repo.json", []string{"s1.png", "", "s2.png"})
	if len(got) != 2 || got[0] != "https://ex.com/r/s1.png" || got[1] != "https://ex.com/r/s2.png" {
		t.Errorf("got %v", got)
	}
	if empty := ResolveAll("https://ex.com/r/repo.json", nil); empty == nil || len(empty) != 0 {
		t.Errorf("expected non-nil empty slice, got %#v", empty)
	}
}
