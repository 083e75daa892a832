package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   string
	Brands []string
	JTI    string
}

// AccessTokenClaims represents the typed JWT accepted by the API.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	Brands []string  `json:"brands,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessBrand reports whether the token grants access to the brand.
// An empty brand list means access to every brand.
func (c *AccessTokenClaims) CanAccessBrand(brand string) bool {
	if len(c.Brands) == 0 {
		return true
	}
	for _, b := range c.Brands {
		if b == brand {
			return true
		}
	}
	return false
}
