// Package models defines the catalog domain types: repositories, packages
// (tweaks) and featured entries.
package models

import "encoding/json"

// UnknownName is shown for repositories and packages that declare no name.
const UnknownName = "Unknown"

// Repository is one ingested manifest. It is built in one piece by the
// manifest builder and never mutated afterwards.
type Repository struct {
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	Icon        string           `json:"icon,omitempty"`
	URL         string           `json:"url"`
	Checksum    string           `json:"checksum,omitempty"`
	Packages    *Packages        `json:"packages"`
	Featured    []*FeaturedEntry `json:"featured"`

	// Failed marks a placeholder standing in for a manifest that could not be
	// fetched or parsed. Description then carries the message and Error the kind.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DisplayName returns the repository name or UnknownName.
func (r *Repository) DisplayName() string {
	if r.Name == "" {
		return UnknownName
	}
	return r.Name
}

// Package returns the package stored under identifier.
func (r *Repository) Package(identifier string) (*Package, bool) {
	if r.Packages == nil {
		return nil, false
	}
	return r.Packages.Get(identifier)
}

// Packages is an insertion-ordered map from identifier to package.
// Keys are unique; the zero value is an empty map ready to use.
type Packages struct {
	keys []string
	byID map[string]*Package
}

// NewPackages returns an empty map with room for n packages.
func NewPackages(n int) *Packages {
	return &Packages{
		keys: make([]string, 0, n),
		byID: make(map[string]*Package, n),
	}
}

// Has reports whether identifier is already taken.
func (p *Packages) Has(identifier string) bool {
	if p == nil || p.byID == nil {
		return false
	}
	_, ok := p.byID[identifier]
	return ok
}

// Get returns the package stored under identifier.
func (p *Packages) Get(identifier string) (*Package, bool) {
	if p == nil || p.byID == nil {
		return nil, false
	}
	pkg, ok := p.byID[identifier]
	return pkg, ok
}

// Insert adds pkg under its Identifier. It returns false and leaves the map
// untouched when the identifier is empty or already present.
func (p *Packages) Insert(pkg *Package) bool {
	if pkg == nil || pkg.Identifier == "" || p.Has(pkg.Identifier) {
		return false
	}
	if p.byID == nil {
		p.byID = make(map[string]*Package)
	}
	p.keys = append(p.keys, pkg.Identifier)
	p.byID[pkg.Identifier] = pkg
	return true
}

// Len returns the number of packages.
func (p *Packages) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the identifiers in manifest order.
func (p *Packages) Keys() []string {
	if p == nil {
		return []string{}
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// List returns the packages in manifest order.
func (p *Packages) List() []*Package {
	if p == nil {
		return []*Package{}
	}
	out := make([]*Package, len(p.keys))
	for i, k := range p.keys {
		out[i] = p.byID[k]
	}
	return out
}

// MarshalJSON encodes the map as an ordered array.
func (p *Packages) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.List())
}
