package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cqwealth-client/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestBackend(t *testing.T, handler http.HandlerFunc, token string) *Backend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackend(&config.Backend{BaseURL: srv.URL}, staticToken(token), zap.NewNop())
}

func TestDoSuccessUsesDataField(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"ok","data":{"id":"u1"}}`))
	}, "")

	env := b.Do(context.Background(), http.MethodGet, "/api/user/profile", nil)
	require.True(t, env.Success)
	require.Equal(t, "ok", env.Message)
	require.JSONEq(t, `{"id":"u1"}`, string(env.Data))
	require.NoError(t, env.Err())
	require.NotNil(t, env.ServerSuccess)
	require.True(t, *env.ServerSuccess)
}

func TestDoSurfacesBodySuccessFlagOnOKStatus(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"Signature mismatch","data":{}}`))
	}, "")

	env := b.Do(context.Background(), http.MethodGet, "/api/payments/verify", nil)
	// status convention: 2xx is still a transport-level success
	require.True(t, env.Success)
	require.NotNil(t, env.ServerSuccess)
	require.False(t, *env.ServerSuccess)
	require.Equal(t, "Signature mismatch", env.Message)
}

func TestDoSuccessWithoutDataFieldReturnsRawBody(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}, "")

	env := b.Do(context.Background(), http.MethodGet, "/health", nil)
	require.True(t, env.Success)
	require.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestDoNonOKMessageFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"success":false,"message":"Invalid credentials","error":"bad"}`, "Invalid credentials"},
		{"error next", `{"success":false,"error":"token expired"}`, "token expired"},
		{"generic last", `{"success":false}`, "An error occurred"},
		{"non-json body", `upstream exploded`, "An error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(tc.body))
			}, "")

			env := b.Do(context.Background(), http.MethodGet, "/api/dashboard", nil)
			require.False(t, env.Success)
			require.Equal(t, tc.want, env.Message)
			require.Equal(t, KindHTTPStatus, env.Kind)
			require.Equal(t, http.StatusUnauthorized, env.Status)

			err := env.Err()
			require.Error(t, err)
			apiErr, ok := err.(*Error)
			require.True(t, ok)
			require.Equal(t, http.StatusUnauthorized, apiErr.Status)
		})
	}
}

func TestDoAttachesBearerToken(t *testing.T) {
	var got string
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":{}}`))
	}, "tok123")

	b.Do(context.Background(), http.MethodGet, "/api/user/profile", nil)
	require.Equal(t, "Bearer tok123", got)
}

func TestDoOmitsAuthorizationWhenSignedOut(t *testing.T) {
	var header string
	var present bool
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_, present = r.Header["Authorization"]
		w.Write([]byte(`{"success":true,"data":{}}`))
	}, "")

	b.Do(context.Background(), http.MethodGet, "/health", nil)
	require.False(t, present, "unexpected Authorization header %q", header)
}

func TestDoTimeoutClassified(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	env := b.Do(ctx, http.MethodGet, "/api/earnings", nil)
	require.False(t, env.Success)
	require.Equal(t, KindTimeout, env.Kind)
	require.Equal(t, "Request timeout. Please check your connection.", env.Message)
}

func TestDoNetworkFailureClassified(t *testing.T) {
	// nothing listens here
	b := NewBackend(&config.Backend{BaseURL: "http://127.0.0.1:1"}, staticToken(""), zap.NewNop())

	env := b.Do(context.Background(), http.MethodGet, "/health", nil)
	require.False(t, env.Success)
	require.Equal(t, KindNetwork, env.Kind)
	require.Equal(t, "Network error. Please check your internet connection.", env.Message)
}
