package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", 7*24*time.Hour)
	raw, err := tokens.Issue(Identity{ID: 42, Email: "a@b.c", Role: RoleAdmin})
	require.NoError(t, err)

	id, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 42, Email: "a@b.c", Role: RoleAdmin}, id)
	assert.True(t, id.IsAdmin())
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(Identity{ID: 1, Role: RolePatient})
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestTokens_WrongSecret(t *testing.T) {
	raw, err := NewTokens("one", time.Hour).Issue(Identity{ID: 1})
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestTokens_RejectsNoneAlg(t *testing.T) {
	c := Claims{ID: 1, Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("patient"))
	assert.True(t, ValidRole("provider"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("root"))
	assert.False(t, ValidRole(""))
}

func TestTOTP(t *testing.T) {
	setup, err := GenerateTOTP("Healthcare Portal", "pat@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	assert.Contains(t, setup.URL, "otpauth://totp/")
	assert.Contains(t, setup.QRCode, "data:image/png;base64,")

	now := time.Now()
	code, err := totp.GenerateCode(setup.Secret, now)
	require.NoError(t, err)
	assert.True(t, ValidateTOTP(code, setup.Secret, now))

	// two steps of skew are tolerated, three are not
	assert.True(t, ValidateTOTP(code, setup.Secret, now.Add(60*time.Second)))
	assert.False(t, ValidateTOTP(code, setup.Secret, now.Add(5*time.Minute)))
	assert.False(t, ValidateTOTP("000000x", setup.Secret, now))
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := FromContext(r.Context())
		w.Header().Set("X-Role", id.Role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, _ := tokens.Issue(Identity{ID: 5, Role: RolePatient})
	h := Authenticate(tokens)(okHandler(t))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + raw, http.StatusNoContent},
		{"lowercase scheme", "bearer " + raw, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	h := OptionalAuth(tokens)(okHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Role"))
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	h := Authenticate(tokens)(RequireRole(RoleAdmin)(okHandler(t)))

	patient, _ := tokens.Issue(Identity{ID: 1, Role: RolePatient})
	admin, _ := tokens.Issue(Identity{ID: 2, Role: RoleAdmin})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+patient)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Insufficient permissions"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, RoleAdmin, rec.Header().Get("X-Role"))
}
