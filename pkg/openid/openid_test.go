package openid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, tokenResponse map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/auth",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse)
	})
	return srv
}

func TestProvider_AuthURL(t *testing.T) {
	t.Parallel()
	srv := newIssuer(t, nil)

	p, err := NewProvider(context.Background(), Config{
		ClientID:     "client-id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/google/callback",
		Issuer:       srv.URL,
	})
	require.NoError(t, err)

	u, err := url.Parse(p.AuthURL("some-state"))
	require.NoError(t, err)
	assert.Equal(t, "/auth", u.Path)
	q := u.Query()
	assert.Equal(t, "some-state", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid profile email", q.Get("scope"))
	assert.Equal(t, "http://localhost:8080/auth/google/callback", q.Get("redirect_uri"))
}

func TestProvider_Exchange(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		resp    map[string]any
		wantErr string
	}{
		{
			name:    "no id token",
			resp:    map[string]any{"access_token": "abc", "token_type": "Bearer", "expires_in": 3600},
			wantErr: "no id_token field in oauth2 token",
		},
		{
			name:    "malformed id token",
			resp:    map[string]any{"access_token": "abc", "token_type": "Bearer", "id_token": "garbage"},
			wantErr: "failed to verify ID Token",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newIssuer(t, tt.resp)
			p, err := NewProvider(context.Background(), Config{ClientID: "client-id", ClientSecret: "secret", Issuer: srv.URL})
			require.NoError(t, err)

			_, err = p.Exchange(context.Background(), "code")
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewProvider_DiscoveryFails(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := NewProvider(context.Background(), Config{Issuer: srv.URL})
	require.Error(t, err)
}

func TestSessions(t *testing.T) {
	t.Parallel()
	s := NewSessions("secret", false)
	id := Identity{Subject: "1234", Email: "admin@example.com", Name: "Admin"}

	cookie, err := s.Issue(id)
	require.NoError(t, err)
	require.Equal(t, CookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)
	require.WithinDuration(t, time.Now().Add(SessionTTL), cookie.Expires, time.Minute)

	claims, err := s.Parse(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, "Admin", claims.Name)
	require.Equal(t, "1234", claims.Subject)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewSessions("other", false).Parse(cookie.Value)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewSessions("secret", false)
		old.now = func() time.Time { return time.Now().Add(-2 * SessionTTL) }
		expired, err := old.Issue(id)
		require.NoError(t, err)
		_, err = s.Parse(expired.Value)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{Email: "x"})
		raw, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = s.Parse(raw)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Parse("not.a.token")
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("clear", func(t *testing.T) {
		c := s.Clear()
		require.Equal(t, CookieName, c.Name)
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge)
	})
}
