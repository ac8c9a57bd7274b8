package schedule

import "fmt"

// Role tags which kind of participant a calendar belongs to.
type Role string

const (
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one of the known tags.
func (r Role) Valid() bool {
	return r == RoleTutor || r == RoleStudent
}

// ParticipantKey identifies one calendar: a tutor's or a student's.
// Tutor and student ids live in separate id spaces, so the role is part
// of the key.
type ParticipantKey struct {
	Role Role  `json:"role"`
	ID   int64 `json:"id"`
}

// TutorKey builds the calendar key for a tutor.
func TutorKey(id int64) ParticipantKey {
	return ParticipantKey{Role: RoleTutor, ID: id}
}

// StudentKey builds the calendar key for a student.
func StudentKey(id int64) ParticipantKey {
	return ParticipantKey{Role: RoleStudent, ID: id}
}

// Less orders keys globally (role first, then id). Every multi-key lock
// acquisition uses this order, which is what prevents deadlock between
// two bookings referencing the same participants in swapped positions.
func (k ParticipantKey) Less(other ParticipantKey) bool {
	if k.Role != other.Role {
		return k.Role < other.Role
	}
	return k.ID < other.ID
}

func (k ParticipantKey) String() string {
	return fmt.Sprintf("%s:%d", k.Role, k.ID)
}
