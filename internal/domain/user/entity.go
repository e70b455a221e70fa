package user

type Role string

const (
	RoleTrainee Role = "trainee" // Academy member - no attendance
	RoleTrainer Role = "trainer" // Clocks in/out for shifts
	RoleAdmin   Role = "admin"   // Full access, may also clock shifts
)

// Session is the authenticated caller as resolved from the access token.
type Session struct {
	UserID string
	Name   string
	Role   Role
}

// CanClockShifts checks if the role may submit attendance actions
func (r Role) CanClockShifts() bool {
	return r == RoleTrainer || r == RoleAdmin
}

// IsAdmin checks if the role has administrator access
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleTrainee, RoleTrainer, RoleAdmin:
		return true
	}
	return false
}
