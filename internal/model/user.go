package model

// Admin is the dashboard operator.  There is a single admin account,
// configured through the environment; only a bcrypt hash of its password
// is ever held in memory.
//
// Fields:
//  Username     – login name.
//  PasswordHash – bcrypt hashed password.
//  Role         – role claim placed in issued tokens (always ADMIN).
type Admin struct {
	Username     string
	PasswordHash string
	Role         string
}

// RoleAdmin is the only role that may call the admin endpoints.
const RoleAdmin = "ADMIN"
