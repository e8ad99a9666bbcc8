package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRevoker struct {
	RevokeFunc func(ctx context.Context, id string, expiresAt time.Time) error
}

func (m *mockRevoker) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	return m.RevokeFunc(ctx, id, expiresAt)
}

func postRevoke(h gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/tokens/revoke", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h(c)
	c.Writer.WriteHeaderNow()
	return w
}

func TestRevokeHandler(t *testing.T) {
	t.Parallel()

	const testSecret = "revoke-secret"

	noJTI, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		storeErr   error
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "valid token is revoked",
			body:       `{"token":"` + signed(t, testSecret, time.Hour) + `"}`,
			wantStatus: http.StatusNoContent,
			wantCalled: true,
		},
		{
			name:       "expired token is ignored",
			body:       `{"token":"` + signed(t, testSecret, -time.Minute) + `"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "foreign signature",
			body:       `{"token":"` + signed(t, "other", time.Hour) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "token without jti",
			body:       `{"token":"` + noJTI + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{name: "missing field", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"token":`, wantStatus: http.StatusBadRequest},
		{
			name:       "store failure",
			body:       `{"token":"` + signed(t, testSecret, time.Hour) + `"}`,
			storeErr:   errors.New("redis down"),
			wantStatus: http.StatusServiceUnavailable,
			wantCalled: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			store := &mockRevoker{RevokeFunc: func(_ context.Context, id string, expiresAt time.Time) error {
				called = true
				assert.NotEmpty(t, id)
				assert.True(t, expiresAt.After(time.Now()))
				return tt.storeErr
			}}

			w := postRevoke(RevokeHandler(testSecret, store), tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCalled, called)
		})
	}
}
