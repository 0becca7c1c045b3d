package api

import (
	"github.com/starford/rounded/internal/catalog"
	"github.com/starford/rounded/internal/catalogservice"
	"github.com/starford/rounded/internal/index"
)

// RepoSummary is one slot of the repository listing (aliased from the domain layer).
type RepoSummary = catalogservice.RepoSummary

// RepoDetail is the full repository response type.
type RepoDetail = catalogservice.RepoDetail

// PackageDetail is the full package response type.
type PackageDetail = catalogservice.PackageDetail

// FeaturedTile is one featured grid cell.
type FeaturedTile = catalogservice.FeaturedTile

// RepoListResponse wraps the repository listing with the load status.
type RepoListResponse struct {
	Repositories []RepoSummary          `json:"repositories" validate:"required"`
	Status       catalogservice.Status `json:"status" validate:"required"`
}

// FeaturedResponse wraps the featured grid.
type FeaturedResponse struct {
	Tiles []FeaturedTile `json:"tiles" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// FailuresResponse lists manifests that failed to load.
type FailuresResponse struct {
	Failures []catalog.Failure `json:"failures" validate:"required"`
}

// RefreshResponse is returned when a refresh has been started.
type RefreshResponse struct {
	Generation string `json:"generation" example:"9b2f0c1e-..." validate:"required"`
}
