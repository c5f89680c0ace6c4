package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"presence-lab/domain"
	"presence-lab/errors"
)

const secret = "my_strong_and_long_secret_key_2026"

func TestToken_Roundtrip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken([]byte(secret), "u1", time.Hour)
	req.NoError(err)

	claims, err := ValidateToken([]byte(secret), token)
	req.NoError(err)
	req.Equal("u1", claims.UserID)
}

func TestToken_Rejected(t *testing.T) {
	req := require.New(t)
	expired, err := GenerateToken([]byte(secret), "u1", -time.Minute)
	req.NoError(err)
	valid, err := GenerateToken([]byte(secret), "u1", time.Hour)
	req.NoError(err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"Expired token", secret, expired},
		{"Wrong secret", "another_secret", valid},
		{"No secret configured", "", valid},
		{"Garbage", secret, "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken([]byte(tt.secret), tt.token)
			require.Error(t, err)
		})
	}
}

func TestHandshake_Resolve(t *testing.T) {
	token, err := GenerateToken([]byte(secret), "u1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		allow     bool
		query     string
		want      domain.UserID
		wantError bool
	}{
		{"Token", false, "?token=" + token, "u1", false},
		{"Token wins over plain identity", true, "?token=" + token + "&userId=u9", "u1", false},
		{"Invalid token", true, "?token=broken", "", true},
		{"Plain identity allowed", true, "?userId=u2", "u2", false},
		{"Plain identity refused", false, "?userId=u2", "", false},
		{"Nothing", true, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			resolver := NewHandshakeResolver(secret, tt.allow)
			userID, err := resolver.Resolve(httptest.NewRequest(http.MethodGet, "/ws"+tt.query, nil))
			if tt.wantError {
				req.ErrorIs(err, errors.ErrInvalidToken)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, userID)
		})
	}
}

func TestBearerMiddleware(t *testing.T) {
	token, err := GenerateToken([]byte(secret), "u1", time.Hour)
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		secret string
		header string
		status int
		userID string
	}{
		{"Valid bearer", secret, "Bearer " + token, http.StatusNoContent, "u1"},
		{"Missing header", secret, "", http.StatusUnauthorized, ""},
		{"Invalid bearer", secret, "Bearer nope", http.StatusUnauthorized, ""},
		{"Open when no secret", "", "", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			seen = ""
			r := httptest.NewRequest(http.MethodPost, "/api/events", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			BearerMiddleware(tt.secret)(next).ServeHTTP(w, r)

			req.Equal(tt.status, w.Code)
			req.Equal(tt.userID, seen)
		})
	}
}
