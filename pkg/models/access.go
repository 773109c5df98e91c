package models

// AccessLevel is the minimum authentication state a route requires.
type AccessLevel int

const (
	// AccessGuest allows anyone, including unauthenticated visitors.
	AccessGuest AccessLevel = iota
	// AccessUser requires a signed-in account.
	AccessUser
)

func (a AccessLevel) String() string {
	switch a {
	case AccessUser:
		return "user"
	default:
		return "guest"
	}
}

// IsAuthenticated reports whether the user is a signed-in account rather
// than a guest.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID > 0
}

// AccessLevel returns the access level the user satisfies.
func (u *User) AccessLevel() AccessLevel {
	if u.IsAuthenticated() {
		return AccessUser
	}
	return AccessGuest
}
