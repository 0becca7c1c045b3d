// Package manifest turns repository manifest documents into catalog records.
//
// Building is two-phase: every package is built and keyed first, then the
// featured entries are built against the completed package map. Individual
// entries never fail; only a document that is not a JSON object, or whose
// packages/featured are not lists, is rejected as a whole.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/buger/jsonparser"

	"github.com/starford/rounded/internal/asset"
	"github.com/starford/rounded/internal/models"
)

// Build parses one manifest fetched from url. It returns either a complete
// repository or an error wrapping apperr.ErrParse or apperr.ErrValidation.
func Build(data []byte, url string) (*models.Repository, error) {
	doc := bytes.TrimSpace(data)
	if !json.Valid(doc) {
		return nil, errNotObject("not valid JSON")
	}
	if _, typ, _, err := jsonparser.Get(doc); err != nil || typ != jsonparser.Object {
		return nil, errNotObject("a JSON " + typ.String())
	}

	pkgEntries, _, err := objectEntries(doc, "packages")
	if err != nil {
		return nil, err
	}
	featEntries, _, err := objectEntries(doc, "featured")
	if err != nil {
		return nil, err
	}

	repo := &models.Repository{
		Name:        stringField(doc, "name"),
		Description: stringField(doc, "description"),
		URL:         url,
		Checksum:    digest(data),
	}
	repo.Icon, _ = asset.Resolve(url, stringField(doc, "icon"))

	pkgs := buildPackages(pkgEntries, url)
	repo.Packages = pkgs
	repo.Featured = buildFeatured(featEntries, url, pkgs)
	return repo, nil
}

// Placeholder returns the record that stands in for a manifest that could
// not be loaded.
func Placeholder(url, kind, message string) *models.Repository {
	return &models.Repository{
		Description: message,
		URL:         url,
		Packages:    models.NewPackages(0),
		Featured:    []*models.FeaturedEntry{},
		Failed:      true,
		Error:       kind,
	}
}

func digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
