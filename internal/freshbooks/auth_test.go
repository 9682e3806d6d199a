package freshbooks

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/freshtrack/internal/config"
)

func TestLoadTokenMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tok, err := loadToken()
	require.NoError(t, err)
	require.Nil(t, tok)

	_, err = AuthorizedClient(context.Background(), &config.OAuthConfig{ClientID: "id"})
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSaveAndLoadToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, saveToken(&oauth2.Token{AccessToken: "abc", RefreshToken: "def", Expiry: expiry}))

	tok, err := loadToken()
	require.NoError(t, err)
	require.Equal(t, "abc", tok.AccessToken)
	require.Equal(t, "def", tok.RefreshToken)
	require.True(t, expiry.Equal(tok.Expiry))
}

func TestAuthorizedClientSendsBearer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, saveToken(&oauth2.Token{
		AccessToken: "abc",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `<response status="ok"/>`)
	}))
	defer srv.Close()

	api, err := Dial(context.Background(), config.Auth{
		APIURL: srv.URL,
		OAuth:  &config.OAuthConfig{ClientID: "id", TokenURL: srv.URL + "/token"},
	})
	require.NoError(t, err)

	resp, err := api.CallAPI(context.Background(), "system.current", nil)
	require.NoError(t, err)
	require.True(t, resp.Success())
	require.Equal(t, "Bearer abc", gotAuth)
}

func TestLoginDeviceFlow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	mux := http.NewServeMux()
	mux.HandleFunc("/device", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"device_code":"dc","user_code":"ABCD-EFGH","verification_uri":"https://example.com/device","expires_in":60,"interval":1}`)
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"fresh","token_type":"Bearer","refresh_token":"r","expires_in":3600}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var out bytes.Buffer
	err := Login(context.Background(), &config.OAuthConfig{
		ClientID:      "id",
		DeviceAuthURL: srv.URL + "/device",
		TokenURL:      srv.URL + "/token",
	}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "ABCD-EFGH")
	require.Contains(t, out.String(), "https://example.com/device")

	tok, err := loadToken()
	require.NoError(t, err)
	require.Equal(t, "fresh", tok.AccessToken)
}
