package model

// Well-known role names
const (
	RoleAdmin   = "Admin"
	RoleDoctor  = "Doctor"
	RolePatient = "Patient"
)

type Role struct {
	RoleID   int    `json:"role_id"`
	RoleName string `json:"role_name"`
}

// RoleIDs projects roles onto identifiers, preserving order.
func RoleIDs(roles []Role) []int {
	ids := make([]int, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.RoleID)
	}
	return ids
}
