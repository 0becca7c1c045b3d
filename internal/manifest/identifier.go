package manifest

import "strconv"

// UnknownIdentifier replaces a missing or empty bundle id.
const UnknownIdentifier = "org.example.unknown"

// AssignIdentifier returns the key a package is stored under.
// An empty raw id becomes UnknownIdentifier; a key that is already taken gets
// the smallest numeric suffix (0, 1, 2, ...) that makes it unused. The first
// occurrence of an id keeps it bare.
func AssignIdentifier(raw string, taken func(string) bool) string {
	id := raw
	if id == "" {
		id = UnknownIdentifier
	}
	if !taken(id) {
		return id
	}
	for n := 0; ; n++ {
		candidate := id + strconv.Itoa(n)
		if !taken(candidate) {
			return candidate
		}
	}
}
