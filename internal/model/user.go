// Package model defines domain entities for the application.
package model

// User is a registered account as persisted in the users collection.
// Password holds the bcrypt hash, never the plaintext.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PublicUser is the view of a user that is safe to return to clients.
type PublicUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// ToPublic strips the password hash.
func (u *User) ToPublic() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// FindUserByEmail returns the index of the user with the given email, or -1.
// Emails are compared exactly.
func FindUserByEmail(users []User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}
