package board

import "github.com/google/uuid"

// NewID returns a random (version 4) UUID. Entities created on the client keep this id
// for their whole life; the server never assigns its own, so it must be globally
// unique without coordination. 122 random bits make collisions negligible.
func NewID() string {
	return uuid.NewString()
}
