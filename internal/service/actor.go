package service

// Portal roles recognised by this service.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleParent  = "parent"
)

// Actor identifies the authenticated user a call is performed for. It is
// passed explicitly instead of being read from ambient request state.
type Actor struct {
	ID   uint
	Role string
}

// CanRecord reports whether the actor may open and submit recording sessions.
func (a Actor) CanRecord() bool {
	return a.Role == RoleTeacher || a.Role == RoleAdmin
}
