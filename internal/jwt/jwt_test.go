package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGeneratorRoundTrip(t *testing.T) {
	generator := NewGenerator("secret", time.Hour, "the-fitness")

	token, issued, err := generator.Issue("user@x.com", "Test User")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, issued.TokenID)

	identity, err := generator.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user@x.com", identity.Email)
	require.Equal(t, "Test User", identity.Name)
	require.Equal(t, issued.TokenID, identity.TokenID)
	require.WithinDuration(t, issued.ExpiresAt, identity.ExpiresAt, time.Second)
}

func TestGeneratorRejectsForeignAndExpiredTokens(t *testing.T) {
	generator := NewGenerator("secret", time.Hour, "the-fitness")
	other := NewGenerator("another-secret", time.Hour, "the-fitness")

	token, _, err := other.Issue("user@x.com", "")
	require.NoError(t, err)
	_, err = generator.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	token, _, err = generator.Issue("user@x.com", "")
	require.NoError(t, err)
	generator.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = generator.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = generator.Validate("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGeneratorRequiresEmail(t *testing.T) {
	generator := NewGenerator("secret", time.Hour, "the-fitness")

	_, _, err := generator.Issue("  ", "name")
	require.Error(t, err)
}
