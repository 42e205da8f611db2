package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deviceServer emulates the OAuth device authorization endpoints. Each call
// to the token endpoint pops the next scripted response.
func deviceServer(t *testing.T, tokenResponses []string) (*DeviceFlow, *int) {
	t.Helper()
	polls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login/device/code", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-client", r.PostForm.Get("client_id"))
		assert.Equal(t, "public_repo", r.PostForm.Get("scope"))
		fmt.Fprint(w, `{"device_code":"dev123","user_code":"ABCD-1234","verification_uri":"https://github.com/login/device","expires_in":900,"interval":0}`)
	})
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "dev123", r.PostForm.Get("device_code"))
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:device_code", r.PostForm.Get("grant_type"))
		require.Less(t, polls, len(tokenResponses), "unexpected extra poll")
		fmt.Fprint(w, tokenResponses[polls])
		polls++
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := NewDeviceFlow("test-client", srv.Client())
	f.codeURL = srv.URL + "/login/device/code"
	f.tokenURL = srv.URL + "/login/oauth/access_token"
	return f, &polls
}

func TestDeviceFlow_Start(t *testing.T) {
	f, _ := deviceServer(t, nil)

	code, err := f.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", code.UserCode)
	assert.Equal(t, "https://github.com/login/device", code.VerificationURI)
	assert.Equal(t, 900*time.Second, code.ExpiresIn)
	// A missing or zero interval falls back to the documented default.
	assert.Equal(t, 5*time.Second, code.interval)
}

func TestDeviceFlow_WaitGrantsAfterPending(t *testing.T) {
	f, polls := deviceServer(t, []string{
		`{"error":"authorization_pending"}`,
		`{"access_token":"gho_testtoken"}`,
	})
	code := &DeviceCode{deviceCode: "dev123", interval: time.Millisecond, ExpiresIn: time.Minute}

	token, err := f.Wait(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "gho_testtoken", token)
	assert.Equal(t, 2, *polls)
}

func TestDeviceFlow_WaitSlowDown(t *testing.T) {
	f, polls := deviceServer(t, []string{
		`{"error":"slow_down","interval":1}`,
		`{"access_token":"gho_testtoken"}`,
	})
	code := &DeviceCode{deviceCode: "dev123", interval: time.Millisecond, ExpiresIn: time.Minute}

	start := time.Now()
	token, err := f.Wait(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, "gho_testtoken", token)
	assert.Equal(t, 2, *polls)
	// The server-provided interval governs the next poll.
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestDeviceFlow_WaitDenied(t *testing.T) {
	f, _ := deviceServer(t, []string{`{"error":"access_denied"}`})
	code := &DeviceCode{deviceCode: "dev123", interval: time.Millisecond, ExpiresIn: time.Minute}

	_, err := f.Wait(context.Background(), code)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeviceFlow_WaitExpired(t *testing.T) {
	f, _ := deviceServer(t, []string{`{"error":"expired_token"}`})
	code := &DeviceCode{deviceCode: "dev123", interval: time.Millisecond, ExpiresIn: time.Minute}

	_, err := f.Wait(context.Background(), code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestDeviceFlow_WaitCancelled(t *testing.T) {
	f, _ := deviceServer(t, nil)
	code := &DeviceCode{deviceCode: "dev123", interval: time.Hour, ExpiresIn: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Wait(ctx, code)
	assert.ErrorIs(t, err, context.Canceled)
}
