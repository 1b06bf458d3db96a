package domain

const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"full_name" db:"full_name"`
	Role         string `json:"role" db:"role"`
	IsActive     bool   `json:"is_active" db:"is_active"`
	CreatedAt    string `json:"created_at,omitempty" db:"created_at"`
}

// Session is the operator currently signed in on this terminal.
type Session struct {
	ID       string `json:"session_id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	LoginAt  string `json:"login_at"`
}
