package model

// TokenManager generates and validates signed session tokens.
type TokenManager interface {
	Generate(claims Claims) (string, error)
	Parse(token string) (Claims, error)
}

// Claims is the identity carried by or resolved for a session token.
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the claims grant administrator access.
func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
