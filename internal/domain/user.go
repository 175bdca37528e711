package domain

import "time"

// User is a mirrored account from the case-management system. The engine
// reads users to resolve roles, detect lawyer-group membership, and render
// names in notes; it never creates or mutates them.
type User struct {
	ID            string
	FullName      string
	Email         string
	IsLawyer      bool
	IsCoordinator bool
	IsActive      bool
	CreatedAt     time.Time
}
