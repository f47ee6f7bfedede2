// Package ctxkeys holds the gin context keys shared between middleware and
// the packages that read the authenticated user from the request context.
package ctxkeys

const (
	// UserID is the key for user ID in gin context.
	UserID = "user_id"
	// UserRole is the key for user role in gin context.
	UserRole = "user_role"
	// UserEmail is the key for user email in gin context.
	UserEmail = "user_email"
)
