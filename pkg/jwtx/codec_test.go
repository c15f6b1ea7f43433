package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/paperbark/journal/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func accessContext() jwtx.SigningContext {
	return jwtx.SigningContext{
		Secret:   []byte("access-secret-for-tests"),
		TTL:      time.Hour,
		Issuer:   "journal-auth",
		Audience: "journal-app",
	}
}

func refreshContext() jwtx.SigningContext {
	return jwtx.SigningContext{
		Secret:   []byte("refresh-secret-for-tests"),
		TTL:      30 * 24 * time.Hour,
		Issuer:   "journal-auth",
		Audience: "journal-app",
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	sc := accessContext()
	now := time.Now().UTC()

	token, err := sc.Issue("01JC0000000000000000000000", "alice", "USER", now)
	require.NoError(t, err)
	require.Equal(t, 3, strings.Count(token, ".")+1, "compact JWS has three segments")

	claims, err := sc.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01JC0000000000000000000000", claims.UserID())
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "USER", claims.Role)
	require.Equal(t, "journal-auth", claims.Issuer)
	require.WithinDuration(t, now.Add(sc.TTL), claims.ExpiresAt.Time, time.Second)
}

func TestVerify_Expired(t *testing.T) {
	sc := accessContext()

	// Issued two TTLs ago, well past expiry.
	token, err := sc.Issue("u1", "alice", "USER", time.Now().Add(-2*sc.TTL))
	require.NoError(t, err)

	_, err = sc.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerify_CrossContextRejection(t *testing.T) {
	access := accessContext()
	refresh := refreshContext()
	now := time.Now()

	accessToken, err := access.Issue("u1", "alice", "USER", now)
	require.NoError(t, err)
	refreshToken, err := refresh.Issue("u1", "alice", "USER", now)
	require.NoError(t, err)

	_, err = refresh.Verify(accessToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	_, err = access.Verify(refreshToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerify_Tampered(t *testing.T) {
	sc := accessContext()

	token, err := sc.Issue("u1", "alice", "USER", time.Now())
	require.NoError(t, err)

	// Flip a byte in the payload segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[10] == 'A' {
		payload[10] = 'B'
	} else {
		payload[10] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = sc.Verify(tampered)
	require.Error(t, err)
}

func TestVerify_Malformed(t *testing.T) {
	sc := accessContext()

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := sc.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", token)
	}
}

func TestVerify_WrongIssuerAudience(t *testing.T) {
	sc := accessContext()
	now := time.Now()

	t.Run("issuer", func(t *testing.T) {
		other := sc
		other.Issuer = "someone-else"
		token, err := other.Issue("u1", "alice", "USER", now)
		require.NoError(t, err)

		_, err = sc.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("audience", func(t *testing.T) {
		other := sc
		other.Audience = "another-app"
		token, err := other.Issue("u1", "alice", "USER", now)
		require.NoError(t, err)

		_, err = sc.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})
}

func TestSigningContext_Validate(t *testing.T) {
	require.NoError(t, accessContext().Validate())

	noSecret := accessContext()
	noSecret.Secret = nil
	require.Error(t, noSecret.Validate())

	noTTL := accessContext()
	noTTL.TTL = 0
	require.Error(t, noTTL.Validate())

	_, err := noSecret.Issue("u1", "alice", "USER", time.Now())
	require.Error(t, err)
}
