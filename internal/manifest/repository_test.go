package manifest

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/rounded/internal/apperr"
	"github.com/starford/rounded/internal/models"
)

const base = "https://ex.com/v1/repo.json"

func mustBuild(t *testing.T, doc string) *models.Repository {
	t.Helper()
	repo, err := Build([]byte(doc), base)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return repo
}

func TestBuild_DuplicateBundleIDs(t *testing.T) {
	repo := mustBuild(t, `{"packages":[{"bundleid":"a.b"},{"bundleid":"a.b"}]}`)
	keys := repo.Packages.Keys()
	if !reflect.DeepEqual(keys, []string{"a.b", "a.b0"}) {
		t.Errorf("keys = %v, want [a.b a.b0]", keys)
	}
	p, _ := repo.Package("a.b0")
	if p.BundleID != "a.b" {
		t.Errorf("declared bundle id = %q, want a.b", p.BundleID)
	}
}

func TestBuild_MissingBundleIDUsesSentinel(t *testing.T) {
	repo := mustBuild(t, `{"packages":[{"name":"X"}]}`)
	keys := repo.Packages.Keys()
	if len(keys) != 1 || keys[0] != UnknownIdentifier {
		t.Errorf("keys = %v, want [%s]", keys, UnknownIdentifier)
	}
}

func TestBuild_SentinelThenDedup(t *testing.T) {
	repo := mustBuild(t, `{"packages":[{"name":"X"},{"bundleid":""},{"bundleid":"org.example.unknown"}]}`)
	want := []string{"org.example.unknown", "org.example.unknown0", "org.example.unknown1"}
	if got := repo.Packages.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestBuild_RelativeIcon(t *testing.T) {
	repo := mustBuild(t, `{"packages":[{"bundleid":"p","icon":"img/a.png"}]}`)
	p, ok := repo.Package("p")
	if !ok {
		t.Fatal("package p missing")
	}
	if p.Icon != "https://ex.com/v1/img/a.png" {
		t.Errorf("icon = %q", p.Icon)
	}
}

func TestBuild_FeaturedLinking(t *testing.T) {
	repo := mustBuild(t, `{
		"packages":[{"bundleid":"a.b","name":"AB"}],
		"featured":[{"bundleid":"a.b"},{"bundleid":"zzz"},{"name":"no id"}]
	}`)
	if len(repo.Featured) != 3 {
		t.Fatalf("featured = %d, want 3", len(repo.Featured))
	}
	want, _ := repo.Package("a.b")
	if repo.Featured[0].LinkedPackage != want {
		t.Errorf("featured[0] not linked to a.b")
	}
	if repo.Featured[1].LinkedPackage != nil {
		t.Errorf("featured[1] linked to %v, want none", repo.Featured[1].LinkedPackage)
	}
	if repo.Featured[2].LinkedPackage != nil {
		t.Errorf("featured[2] should not link without bundle id")
	}
}

func TestBuild_FeaturedBeforePackagesInDocument(t *testing.T) {
	repo := mustBuild(t, `{"featured":[{"bundleid":"late"}],"packages":[{"bundleid":"late"}]}`)
	if repo.Featured[0].LinkedPackage == nil {
		t.Error("featured listed before packages should still link")
	}
}

func TestBuild_LinkedIdentifierInvariant(t *testing.T) {
	repo := mustBuild(t, `{
		"packages":[{"bundleid":"x"},{"bundleid":"x"},{"bundleid":"x0"},{}],
		"featured":[{"bundleid":"x"},{"bundleid":"x0"},{"bundleid":"org.example.unknown"},{"bundleid":"nope"}]
	}`)
	for i, f := range repo.Featured {
		if f.LinkedPackage != nil && f.LinkedPackage.Identifier != f.BundleID {
			t.Errorf("featured[%d]: linked %q, declared %q", i, f.LinkedPackage.Identifier, f.BundleID)
		}
	}
}

func TestBuild_TopLevelFields(t *testing.T) {
	repo := mustBuild(t, `{"name":"Snow","description":"tweaks","icon":"icon.png"}`)
	if repo.Name != "Snow" || repo.Description != "tweaks" {
		t.Errorf("name/description = %q/%q", repo.Name, repo.Description)
	}
	if repo.Icon != "https://ex.com/v1/icon.png" {
		t.Errorf("icon = %q", repo.Icon)
	}
	if repo.URL != base {
		t.Errorf("url = %q", repo.URL)
	}
	if repo.Packages.Len() != 0 || len(repo.Featured) != 0 {
		t.Errorf("expected empty packages and featured")
	}
	if repo.Checksum == "" {
		t.Error("checksum not set")
	}
}

func TestBuild_NotAnObject(t *testing.T) {
	for _, doc := range []string{`[]`, `"str"`, `42`, `{"name":`, ``, `null`} {
		_, err := Build([]byte(doc), base)
		if !errors.Is(err, apperr.ErrParse) {
			t.Errorf("Build(%q) err = %v, want ErrParse", doc, err)
		}
	}
}

func TestBuild_ListsOfWrongType(t *testing.T) {
	for _, doc := range []string{`{"packages":{}}`, `{"packages":"x"}`, `{"featured":3}`, `{"featured":{"a":1}}`} {
		_, err := Build([]byte(doc), base)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Build(%q) err = %v, want ErrValidation", doc, err)
		}
	}
}

func TestBuild_NullListsAreEmpty(t *testing.T) {
	repo := mustBuild(t, `{"packages":null,"featured":null}`)
	if repo.Packages.Len() != 0 || len(repo.Featured) != 0 {
		t.Error("null lists should build an empty repository")
	}
}

func TestBuild_MalformedEntriesAreNotFatal(t *testing.T) {
	repo := mustBuild(t, `{"packages":[
		{"bundleid":"ok","name":42,"varOnly":"yes","screenshots":"nope","icon":7},
		5,
		"string entry",
		null
	],"featured":[7,{"showname":"x","square":1}]}`)
	if repo.Packages.Len() != 4 {
		t.Fatalf("packages = %d, want 4", repo.Packages.Len())
	}
	p, _ := repo.Package("ok")
	if p.Name != "" || !p.VariableOnly || len(p.Screenshots) != 0 || p.Icon != "" {
		t.Errorf("mistyped fields should be absent/default: %+v", p)
	}
	if len(repo.Featured) != 2 {
		t.Fatalf("featured = %d, want 2", len(repo.Featured))
	}
	f := repo.Featured[1]
	if !f.ShowName || f.Square {
		t.Errorf("mistyped featured flags should default: %+v", f)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	doc := `{"name":"r","packages":[{"bundleid":"a"},{},{"bundleid":"a"},{}],
		"featured":[{"bundleid":"a0","banner":"b.png"}]}`
	r1 := mustBuild(t, doc)
	r2 := mustBuild(t, doc)
	if !reflect.DeepEqual(r1.Packages.Keys(), r2.Packages.Keys()) {
		t.Errorf("keys differ: %v vs %v", r1.Packages.Keys(), r2.Packages.Keys())
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Error("repeated builds are not structurally equal")
	}
}

func TestBuild_IdentifiersUniqueAndAssetsAbsolute(t *testing.T) {
	repo := mustBuild(t, `{"packages":[
		{"bundleid":"a","icon":"i.png","banner":"/b.png","path":"dl/a.zip","screenshots":["s1.png","https://cdn.x/s2.png",""]},
		{"bundleid":"a","icon":""},{"bundleid":"a0"},{},{},{"bundleid":"a"}
	]}`)
	seen := map[string]bool{}
	for _, p := range repo.Packages.List() {
		if p.Identifier == "" {
			t.Error("empty identifier")
		}
		if seen[p.Identifier] {
			t.Errorf("duplicate identifier %q", p.Identifier)
		}
		seen[p.Identifier] = true

		assets := append([]string{p.Icon, p.Banner, p.DownloadPath}, p.Screenshots...)
		for _, a := range assets {
			if a == "" {
				continue
			}
			u, err := url.Parse(a)
			if err != nil || !u.IsAbs() {
				t.Errorf("asset %q is not absolute", a)
			}
		}
	}
	first, _ := repo.Package("a")
	if len(first.Screenshots) != 2 || !strings.HasPrefix(first.Screenshots[0], "https://ex.com/v1/") {
		t.Errorf("screenshots = %v", first.Screenshots)
	}
	if first.DownloadPath != "https://ex.com/v1/dl/a.zip" {
		t.Errorf("download path = %q", first.DownloadPath)
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder("https://bad.invalid/x.json", "network error", "failed")
	if !p.Failed || p.Description != "failed" || p.Packages.Len() != 0 || len(p.Featured) != 0 {
		t.Errorf("placeholder = %+v", p)
	}
}
