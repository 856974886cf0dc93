// Package policies holds resolution policies applied on top of the generic
// resolvers, such as swapping known-broken library versions for patched ones.
package policies

// LibraryFixPolicy replaces known-broken library versions by patched ones. The
// replacement is keyed by the full coordinate string of the specifier and
// applied on the intermediate library map before the download list is
// populated, so downstream logic needs no special cases.
type LibraryFixPolicy struct {
	fixes map[string]string
}

// DefaultLibraryFixPolicy carries the stock fix table.
func DefaultLibraryFixPolicy() LibraryFixPolicy {
	return LibraryFixPolicy{fixes: map[string]string{
		// Versions below 2.2.30 break against current session services.
		"com.mojang:authlib:2.1.28": "2.2.30",
	}}
}

// NewLibraryFixPolicy builds a policy from coordinate -> replacement version.
func NewLibraryFixPolicy(fixes map[string]string) LibraryFixPolicy {
	copied := make(map[string]string, len(fixes))
	for coordinate, version := range fixes {
		copied[coordinate] = version
	}
	return LibraryFixPolicy{fixes: copied}
}

// FixVersion returns the replacement version for a coordinate, and whether a
// fix applies.
func (p LibraryFixPolicy) FixVersion(coordinate string) (string, bool) {
	version, ok := p.fixes[coordinate]
	return version, ok
}
