//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"unihub-auth/internal/config"
	"unihub-auth/internal/handler"
	"unihub-auth/internal/middleware"
	"unihub-auth/internal/model"
	"unihub-auth/internal/password"
	"unihub-auth/internal/repository"
	"unihub-auth/internal/router"
	"unihub-auth/internal/service"
	"unihub-auth/internal/token"
)

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Message      string           `json:"message"`
		User         model.PublicUser `json:"user"`
		AccessToken  string           `json:"access_token"`
		RefreshToken string           `json:"refresh_token"`
		TokenType    string           `json:"token_type"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	codec := token.NewCodec("test-secret")
	authService := service.NewAuthService(
		password.NewHasher(1_000),
		codec,
		token.NewIssuer(codec, 30*time.Minute, 7*24*time.Hour),
		repository.NewMemoryUserRepository(),
		repository.NewMemoryTokenRepository(),
	)

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   30 * time.Second,
		TokenSecret:      "test-secret",
		AccessTTL:        30 * time.Minute,
		RefreshTTL:       7 * 24 * time.Hour,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(
		cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewAuthHandler(authService),
	))
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, payload any) (*http.Response, envelope) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

// rawEnvelope leaves data undecoded so callers can pick their own shape.
type rawEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func getWithBearer(t *testing.T, url string, accessToken string) (*http.Response, rawEnvelope) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed rawEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func register(t *testing.T, serverURL string) envelope {
	t.Helper()

	resp, parsed := postJSON(t, serverURL+"/api/v1/auth/register", map[string]string{
		"full_name": "A B",
		"username":  "ab01",
		"email":     "ab@x.com",
		"password":  "Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, parsed.Success)
	return parsed
}
