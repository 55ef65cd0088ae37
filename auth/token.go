// Package auth issues and validates the JWTs that gate the realtime
// endpoint. The signing secret is injected from configuration.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// GenerateToken creates a signed JWT for a specific user.
func (v *Verifier) GenerateToken(userID string, roles []string,
	authTokenDuration time.Duration) (string, error) {
	expirationTime := time.Now().Add(authTokenDuration)

	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    v.issuer,
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

// ParseToken validates the signature and expiration of a JWT string and
// returns its claims.
func (v *Verifier) ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// ValidateToken is the gate form of ParseToken for callers that only need
// pass or fail.
func (v *Verifier) ValidateToken(tokenString string) error {
	_, err := v.ParseToken(tokenString)
	return err
}
