package manifest

import (
	"github.com/starford/rounded/internal/asset"
	"github.com/starford/rounded/internal/models"
)

// PackageLookup resolves a declared bundle id to a package of the same
// repository.
type PackageLookup interface {
	Get(identifier string) (*models.Package, bool)
}

// BuildFeatured normalizes one featured object and links it to the package
// whose identifier equals its bundle id, if pkgs has one.
func BuildFeatured(obj []byte, baseURL string, pkgs PackageLookup) *models.FeaturedEntry {
	f := &models.FeaturedEntry{
		Name:      stringField(obj, "name"),
		BundleID:  stringField(obj, "bundleid"),
		FontColor: stringField(obj, "fontcolor"),
		ShowName:  boolField(obj, "showname", true),
		Square:    boolField(obj, "square", false),
	}
	f.Banner, _ = asset.Resolve(baseURL, stringField(obj, "banner"))
	if f.BundleID != "" && pkgs != nil {
		if p, ok := pkgs.Get(f.BundleID); ok {
			f.LinkedPackage = p
		}
	}
	return f
}

// buildFeatured is the second build phase and takes the completed package map.
func buildFeatured(entries [][]byte, baseURL string, pkgs *models.Packages) []*models.FeaturedEntry {
	out := make([]*models.FeaturedEntry, 0, len(entries))
	for _, obj := range entries {
		out = append(out, BuildFeatured(obj, baseURL, pkgs))
	}
	return out
}
