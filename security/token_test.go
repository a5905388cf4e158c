package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "not-so-secret"

func TestAdminTokenRoundTrip(t *testing.T) {
	tok, err := IssueAdminToken(testSecret, "ops@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAdminToken(testSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "ops@example.com", claims.Subject)
}

func TestParseAdminTokenRejects(t *testing.T) {
	good, err := IssueAdminToken(testSecret, "ops@example.com", time.Hour)
	require.NoError(t, err)

	_, err = ParseAdminToken("other-secret", good)
	assert.ErrorIs(t, err, ErrBadToken)

	_, err = ParseAdminToken(testSecret, "garbage")
	assert.ErrorIs(t, err, ErrBadToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	s, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseAdminToken(testSecret, s)
	assert.ErrorIs(t, err, ErrBadToken)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: RoleAdmin})
	s, err = noExpiry.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseAdminToken(testSecret, s)
	assert.ErrorIs(t, err, ErrBadToken)

	user := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err = user.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseAdminToken(testSecret, s)
	assert.ErrorIs(t, err, ErrNotAdmin)

	// HS512 isn't accepted even with the right secret
	other := jwt.NewWithClaims(jwt.SigningMethodHS512, AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err = other.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = ParseAdminToken(testSecret, s)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestIssueAdminTokenValidates(t *testing.T) {
	_, err := IssueAdminToken("", "ops", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = IssueAdminToken(testSecret, "", time.Hour)
	assert.ErrorIs(t, err, ErrNoSubject)

	_, err = IssueAdminToken(testSecret, "ops", 0)
	assert.ErrorIs(t, err, ErrBadExpiry)
}
