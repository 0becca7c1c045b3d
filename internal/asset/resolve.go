// Package asset resolves asset references found in manifests against the
// manifest's own URL.
package asset

import (
	"net/url"
	"strings"
)

// Resolve joins ref onto base with standard URL reference resolution.
// It returns false when ref is empty, when either side does not parse, or
// when the result is not an absolute URL.
func Resolve(base, ref string) (string, bool) {
	if strings.TrimSpace(ref) == "" {
		return "", false
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	out := b.ResolveReference(r)
	if !out.IsAbs() {
		return "", false
	}
	s := out.String()
	if s == "" {
		return "", false
	}
	return s, true
}

// ResolveAll resolves each reference in order, dropping the ones that do
// not resolve. The result is never nil.
func ResolveAll(base string, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if s, ok := Resolve(base, ref); ok {
			out = append(out, s)
		}
	}
	return out
}
