package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier("unit-test-secret", "chathub")

	// Given a signed token
	token, err := verifier.GenerateToken("user-123", []string{"member"}, time.Hour)
	req.NoError(err)

	// When parsing it back
	claims, err := verifier.ParseToken(token)
	req.NoError(err)

	// Then identity and roles survive
	req.Equal("user-123", claims.UserID)
	req.Equal([]string{"member"}, claims.Roles)
	req.Equal("chathub", claims.Issuer)

	req.NoError(verifier.ValidateToken(token))
}

func TestVerifier_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)
	signer := NewVerifier("secret-one", "chathub")
	verifier := NewVerifier("secret-two", "chathub")

	token, err := signer.GenerateToken("user-123", nil, time.Hour)
	req.NoError(err)

	req.Error(verifier.ValidateToken(token))
}

func TestVerifier_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier("unit-test-secret", "chathub")

	token, err := verifier.GenerateToken("user-123", nil, -time.Minute)
	req.NoError(err)

	req.Error(verifier.ValidateToken(token))
}

func TestVerifier_Rejects_Garbage(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier("unit-test-secret", "chathub")

	req.Error(verifier.ValidateToken("not-a-token"))
	req.Error(verifier.ValidateToken(""))
}
