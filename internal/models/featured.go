package models

// FeaturedEntry is a promotional tile of a repository, optionally linked to
// one of its packages.
type FeaturedEntry struct {
	Name      string `json:"name,omitempty"`
	BundleID  string `json:"bundle_id,omitempty"`
	FontColor string `json:"font_color,omitempty"`
	ShowName  bool   `json:"show_name"`
	Square    bool   `json:"square"`
	Banner    string `json:"banner,omitempty"`

	// LinkedPackage is resolved once when the repository is built.
	// When set, LinkedPackage.Identifier == BundleID.
	LinkedPackage *Package `json:"-"`
}

// DisplayName returns the entry name, falling back to the linked package.
func (f *FeaturedEntry) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	if f.LinkedPackage != nil {
		return f.LinkedPackage.DisplayName()
	}
	return UnknownName
}

// DisplayBanner returns the entry banner, falling back to the linked package.
func (f *FeaturedEntry) DisplayBanner() string {
	if f.Banner != "" {
		return f.Banner
	}
	if f.LinkedPackage != nil {
		return f.LinkedPackage.Banner
	}
	return ""
}

// LinkTarget returns the linked package, if any.
func (f *FeaturedEntry) LinkTarget() (*Package, bool) {
	return f.LinkedPackage, f.LinkedPackage != nil
}

// Tile is anything the featured grid can render: a name, a banner and an
// optional package to navigate to.
type Tile interface {
	DisplayName() string
	DisplayBanner() string
	LinkTarget() (*Package, bool)
}

var (
	_ Tile = (*Package)(nil)
	_ Tile = (*FeaturedEntry)(nil)
)
