package domain

import "time"

// Identity is the verified caller carried through every protected operation.
type Identity struct {
	UserID string
	Role   Role
}

// IsZero reports whether no identity was established.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// Token represents issued authentication token metadata.
type Token struct {
	Value     string
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
