package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/shakhna/portal/core"
)

// Roles, as stored in the Role column of the users table.
const (
	RoleStudent = "Student"
	RoleTeacher = "Teacher"
)

// User mirrors a record of the remote users table. Passwords are kept as
// plaintext columns in the store and matched verbatim on login; this system
// never hashes them.
type User struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Password  string      `json:"-"`
	Name      string      `json:"name"`
	Role      string      `json:"role"`
	GroupID   null.String `json:"group_id,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// IsTeacher reports whether the user lands on the teacher surface after login.
// Only the teacher branch is compared case-insensitively; any other role value
// is treated as a student.
func (u User) IsTeacher() bool {
	return strings.EqualFold(u.Role, RoleTeacher)
}

func (u User) IsStudent() bool {
	return !u.IsTeacher()
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email)
	return validate.Struct(nu)
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email)
	return validate.Struct(c)
}

// localPart derives a display name from the email's local part.
func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
