// Package catalogservice runs catalog loads and shapes the current catalog
// for the HTTP and MCP surfaces.
package catalogservice

import "github.com/starford/rounded/internal/models"

// Status describes the current catalog generation.
type Status struct {
	Generation string `json:"generation"`
	Total      int    `json:"total"`
	Loaded     int    `json:"loaded"`
	Failures   int    `json:"failures"`
	Ready      bool   `json:"ready"`
	Refreshing bool   `json:"refreshing"`
}

// RepoSummary is one slot in a repository listing.
type RepoSummary struct {
	Index       int    `json:"index"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Packages    int    `json:"packages"`
	Featured    int    `json:"featured"`
	Loading     bool   `json:"loading,omitempty"`
	Failed      bool   `json:"failed,omitempty"`
	Error       string `json:"error,omitempty"`
}

// RepoDetail is a repository with its package list and featured grid.
type RepoDetail struct {
	RepoSummary
	Packages []PackageListItem `json:"package_list"`
	Featured []FeaturedTile    `json:"featured_tiles"`
}

// PackageListItem is a lightweight package entry.
type PackageListItem struct {
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// PackageDetail is the full package view.
type PackageDetail struct {
	*models.Package
	RepoIndex int    `json:"repo_index"`
	RepoName  string `json:"repo_name"`
	// Name shadows Package.Name with the display name.
	Name string `json:"name"`
}

// PackageRef addresses a package by repository slot and identifier.
type PackageRef struct {
	Repo       int    `json:"repo"`
	Identifier string `json:"identifier"`
}

// FeaturedTile is one cell of the featured grid.
type FeaturedTile struct {
	RepoIndex int         `json:"repo_index"`
	Name      string      `json:"name"`
	Banner    string      `json:"banner,omitempty"`
	FontColor string      `json:"font_color,omitempty"`
	ShowName  bool        `json:"show_name"`
	Square    bool        `json:"square"`
	Target    *PackageRef `json:"target,omitempty"`
}

func summarize(index int, url string, repo *models.Repository) RepoSummary {
	if repo == nil {
		return RepoSummary{Index: index, URL: url, Name: models.UnknownName, Loading: true}
	}
	return RepoSummary{
		Index:       index,
		URL:         url,
		Name:        repo.DisplayName(),
		Description: repo.Description,
		Icon:        repo.Icon,
		Packages:    repo.Packages.Len(),
		Featured:    len(repo.Featured),
		Failed:      repo.Failed,
		Error:       repo.Error,
	}
}

func packageItem(p *models.Package) PackageListItem {
	return PackageListItem{
		Identifier:  p.Identifier,
		Name:        p.DisplayName(),
		Author:      p.Author,
		Description: p.Description,
		Version:     p.Version,
		Icon:        p.Icon,
	}
}

func tiles(repoIndex int, repo *models.Repository) []FeaturedTile {
	out := make([]FeaturedTile, 0, len(repo.Featured))
	for _, f := range repo.Featured {
		t := FeaturedTile{
			RepoIndex: repoIndex,
			Name:      f.DisplayName(),
			Banner:    f.DisplayBanner(),
			FontColor: f.FontColor,
			ShowName:  f.ShowName,
			Square:    f.Square,
		}
		if p, ok := f.LinkTarget(); ok {
			t.Target = &PackageRef{Repo: repoIndex, Identifier: p.Identifier}
		}
		out = append(out, t)
	}
	return out
}
