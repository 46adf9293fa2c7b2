package models

import "time"

// User is the database row shape for a back-office user.
type User struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	FullName     string     `db:"full_name"`
	Role         string     `db:"role"`
	Email        string     `db:"email"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
