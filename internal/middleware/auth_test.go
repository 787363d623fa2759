package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func protectedHandler() http.Handler {
	return AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(strconv.FormatInt(id, 10)))
	}))
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	h := protectedHandler()

	numeric := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"id": 42, "exp": time.Now().Add(time.Hour).Unix()})
	rec := serve(h, "Bearer "+numeric)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())

	str := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"id": "7"})
	rec = serve(h, "Bearer "+str)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", rec.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	h := protectedHandler()

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Not authorized, no token"},
		{"not bearer", "Basic abc", "Not authorized, no token"},
		{"garbage", "Bearer not-a-token", "Not authorized, token failed"},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"id": 1}), "Not authorized, token failed"},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"id": 1, "exp": time.Now().Add(-time.Hour).Unix()}), "Not authorized, token failed"},
		{"no id", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "x"}), "Not authorized, token failed"},
		{"other algorithm", "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"id": 1}), "Not authorized, token failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rec.Body.String())
		})
	}
}

func TestAuthMiddlewareWithoutSecretRejectsEverything(t *testing.T) {
	h := AuthMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	token := signToken(t, jwt.SigningMethodHS256, []byte("anything"), jwt.MapClaims{"id": 1})

	rec := serve(h, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
