package models

// Package is one tweak entry of a repository.
type Package struct {
	// Identifier is the deduplicated key inside the owning repository.
	Identifier string `json:"identifier"`
	// BundleID is the id as declared in the manifest, possibly empty.
	BundleID string `json:"bundle_id,omitempty"`

	Name            string `json:"name,omitempty"`
	Author          string `json:"author,omitempty"`
	Description     string `json:"description,omitempty"`
	LongDescription string `json:"long_description,omitempty"`
	Version         string `json:"version,omitempty"`

	Icon         string   `json:"icon,omitempty"`
	Banner       string   `json:"banner,omitempty"`
	DownloadPath string   `json:"download_path,omitempty"`
	Screenshots  []string `json:"screenshots"`

	VariableOnly bool `json:"variable_only"`

	// RepoURL identifies the owning repository. Resolve it through the
	// catalog; packages never hold the repository itself.
	RepoURL string `json:"repo_url"`
}

// DisplayName returns the package name or UnknownName.
func (p *Package) DisplayName() string {
	if p.Name == "" {
		return UnknownName
	}
	return p.Name
}

// DisplayBanner returns the banner URL, empty when absent.
func (p *Package) DisplayBanner() string { return p.Banner }

// LinkTarget returns the package itself.
func (p *Package) LinkTarget() (*Package, bool) { return p, true }
