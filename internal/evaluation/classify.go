package evaluation

import "strings"

const (
	RoleKeeper     = "WK"
	RoleBatter     = "BAT"
	RoleBowler     = "BOWL"
	RoleAllRounder = "AR"
)

// NormalizeRole maps a free-text role label onto one of the four squad
// categories using case-insensitive substring matching. Precedence matters:
// keeper indicators win over all-round, all-round over bowling, bowling
// over batting. Anything unmatched counts as batting.
func NormalizeRole(role string) string {
	normalized := strings.ToLower(strings.TrimSpace(role))

	switch {
	case strings.Contains(normalized, "wicket") || normalized == "wk":
		return RoleKeeper
	case strings.Contains(normalized, "all round") || strings.Contains(normalized, "allround") || normalized == "ar":
		return RoleAllRounder
	case strings.Contains(normalized, "bowl"):
		return RoleBowler
	case strings.Contains(normalized, "bat"):
		return RoleBatter
	}
	return RoleBatter
}
