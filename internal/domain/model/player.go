package model

// Role is a player's position code.
type Role string

// Roles recognized by the rotation and libero rules.
const (
	RoleSetter        Role = "setter"
	RoleOutside       Role = "outside"
	RoleMiddleBlocker Role = "middle_blocker"
	RoleOpposite      Role = "opposite"
	RoleLibero        Role = "libero"
)

// Player is an immutable snapshot embedded into lineup and substitution
// events, so replaying a historical log never depends on a mutable roster.
type Player struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// IsZero reports whether the snapshot is empty.
func (p Player) IsZero() bool { return p.ID == "" }
