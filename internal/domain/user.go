package domain

import (
	"regexp"

	"github.com/google/uuid"
)

const userIDLength = 5

var wordRun = regexp.MustCompile(`\w+`)

// User is a registered account. Usernames are not unique.
type User struct {
	ID       string
	Username string
}

// ValidUsername reports whether username contains at least one run of word characters.
func ValidUsername(username string) bool {
	return wordRun.MatchString(username)
}

// NewUserID returns a short identifier cut from the tail of a random UUID.
// Collisions are possible and are not checked.
func NewUserID() string {
	id := uuid.NewString()
	return id[len(id)-userIDLength:]
}
