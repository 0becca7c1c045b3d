package manifest

import (
	"github.com/starford/rounded/internal/asset"
	"github.com/starford/rounded/internal/models"
)

// BuildPackage normalizes one package object. obj may be nil or hold any
// shape; fields that are missing or mistyped come out absent or defaulted.
// The returned package has no Identifier yet: the repository builder assigns
// it against the keys already inserted.
func BuildPackage(obj []byte, baseURL string) *models.Package {
	p := &models.Package{
		BundleID:        stringField(obj, "bundleid"),
		Name:            stringField(obj, "name"),
		Author:          stringField(obj, "author"),
		Description:     stringField(obj, "description"),
		LongDescription: stringField(obj, "long_description"),
		Version:         stringField(obj, "version"),
		Screenshots:     asset.ResolveAll(baseURL, stringList(obj, "screenshots")),
		VariableOnly:    boolField(obj, "varOnly", true),
		RepoURL:         baseURL,
	}
	p.Icon, _ = asset.Resolve(baseURL, stringField(obj, "icon"))
	p.Banner, _ = asset.Resolve(baseURL, stringField(obj, "banner"))
	p.DownloadPath, _ = asset.Resolve(baseURL, stringField(obj, "path"))
	return p
}

// buildPackages is the first build phase. It returns the completed package
// map; nothing reads it before every entry has been inserted.
func buildPackages(entries [][]byte, baseURL string) *models.Packages {
	pkgs := models.NewPackages(len(entries))
	for _, obj := range entries {
		p := BuildPackage(obj, baseURL)
		p.Identifier = AssignIdentifier(p.BundleID, pkgs.Has)
		pkgs.Insert(p)
	}
	return pkgs
}
