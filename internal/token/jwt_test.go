package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/numbook-server/internal/clock"
	"github.com/dtroode/numbook-server/internal/model"
)

var testClaims = model.Claims{UserID: 7, Username: "alice", Role: model.RoleUser}

func newTestJWT(t *testing.T) (*JWT, *clock.FakeClock) {
	t.Helper()
	clk := clock.Fake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewJWT("secret", clk).(*JWT), clk
}

func TestJWT_Roundtrip(t *testing.T) {
	j, _ := newTestJWT(t)

	tok, err := j.Generate(testClaims)
	require.NoError(t, err)
	require.Len(t, strings.Split(tok, "."), 3)

	got, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, testClaims, got)
}

func TestJWT_PayloadShape(t *testing.T) {
	j, clk := newTestJWT(t)

	tok, err := j.Generate(testClaims)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var h map[string]any
	require.NoError(t, json.Unmarshal(header, &h))
	assert.Equal(t, "HS256", h["alg"])
	assert.Equal(t, "JWT", h["typ"])

	var p map[string]any
	require.NoError(t, json.Unmarshal(payload, &p))
	assert.EqualValues(t, 7, p["userId"])
	assert.Equal(t, "alice", p["username"])
	assert.Equal(t, "user", p["role"])
	assert.EqualValues(t, clk.Now().Add(TTL).Unix(), p["exp"])
}

func TestJWT_Expiry(t *testing.T) {
	j, clk := newTestJWT(t)

	tok, err := j.Generate(testClaims)
	require.NoError(t, err)

	clk.Advance(TTL - time.Second)
	_, err = j.Parse(tok)
	require.NoError(t, err)

	clk.Advance(2 * time.Second)
	_, err = j.Parse(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		valid   bool
	}{
		{name: "one second before exp", elapsed: TTL - time.Second, valid: true},
		{name: "exactly at exp", elapsed: TTL, valid: true},
		{name: "within the exp second", elapsed: TTL + 500*time.Millisecond, valid: true},
		{name: "one second after exp", elapsed: TTL + time.Second, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, clk := newTestJWT(t)

			tok, err := j.Generate(testClaims)
			require.NoError(t, err)

			clk.Advance(tt.elapsed)
			_, err = j.Parse(tok)
			if tt.valid {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, jwt.ErrTokenExpired)
		})
	}
}

func TestJWT_TamperedSignature(t *testing.T) {
	j, _ := newTestJWT(t)

	tok, err := j.Generate(testClaims)
	require.NoError(t, err)

	sigStart := strings.LastIndex(tok, ".") + 1
	for i := sigStart; i < len(tok); i++ {
		replacement := byte('A')
		if tok[i] == 'A' {
			replacement = 'B'
		}
		tampered := tok[:i] + string(replacement) + tok[i+1:]

		_, err := j.Parse(tampered)
		assert.Error(t, err, "signature byte %d altered", i-sigStart)
	}
}

func TestJWT_TamperedPayload(t *testing.T) {
	j, _ := newTestJWT(t)

	tok, err := j.Generate(testClaims)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	forged, err := json.Marshal(map[string]any{
		"userId":   7,
		"username": "alice",
		"role":     "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = j.Parse(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	j, clk := newTestJWT(t)
	other := NewJWT("other-secret", clk)

	tok, err := other.Generate(testClaims)
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestJWT_Malformed(t *testing.T) {
	j, _ := newTestJWT(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "one segment", token: "abc"},
		{name: "two segments", token: "abc.def"},
		{name: "four segments", token: "a.b.c.d"},
		{name: "garbage", token: "!!!.???.***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := j.Parse(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWT_RejectsNoneAlgorithm(t *testing.T) {
	j, clk := newTestJWT(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clk.Now().Add(TTL))},
		UserID:           1,
		Role:             model.RoleAdmin,
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestJWT_MissingExpiry(t *testing.T) {
	j, _ := newTestJWT(t)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1, Role: model.RoleUser})
	tok, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}
