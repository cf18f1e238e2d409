package metadata

import "strings"

// Access is the closed vocabulary of record and file access levels,
// resolved once at the request-building boundary.
type Access int

const (
	AccessPublic Access = iota
	AccessRestricted
)

// ParseAccess maps a configuration string onto an access level. Unknown
// values default to public.
func ParseAccess(value string) Access {
	if strings.EqualFold(strings.TrimSpace(value), "restricted") {
		return AccessRestricted
	}
	return AccessPublic
}

func (a Access) String() string {
	if a == AccessRestricted {
		return "restricted"
	}
	return "public"
}
