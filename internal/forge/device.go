package forge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v74/github"
)

// DefaultClientID is the OAuth application used for interactive token
// acquisition. Override with NewDeviceFlow for tests.
const DefaultClientID = "7799527e58dca091b36a"

const (
	deviceCodeURL  = "https://github.com/login/device/code"
	accessTokenURL = "https://github.com/login/oauth/access_token"
	tokenScope     = "public_repo"
)

// DeviceCode is the user-facing half of a device authorization: the code the
// user types at VerificationURI.
type DeviceCode struct {
	UserCode        string
	VerificationURI string
	ExpiresIn       time.Duration

	deviceCode string
	interval   time.Duration
}

// DeviceFlow drives the GitHub OAuth device authorization grant.
type DeviceFlow struct {
	clientID string
	http     *http.Client

	codeURL  string
	tokenURL string
}

// NewDeviceFlow returns a flow for the given OAuth client. A nil httpClient
// uses http.DefaultClient.
func NewDeviceFlow(clientID string, httpClient *http.Client) *DeviceFlow {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DeviceFlow{
		clientID: clientID,
		http:     httpClient,
		codeURL:  deviceCodeURL,
		tokenURL: accessTokenURL,
	}
}

// Start requests a device code. The caller shows UserCode and
// VerificationURI to the user, then calls Wait.
func (f *DeviceFlow) Start(ctx context.Context) (*DeviceCode, error) {
	form := url.Values{
		"client_id": {f.clientID},
		"scope":     {tokenScope},
	}
	var resp struct {
		DeviceCode      string `json:"device_code"`
		UserCode        string `json:"user_code"`
		VerificationURI string `json:"verification_uri"`
		ExpiresIn       int    `json:"expires_in"`
		Interval        int    `json:"interval"`
	}
	if err := f.postForm(ctx, f.codeURL, form, &resp); err != nil {
		return nil, fmt.Errorf("requesting device code: %w", err)
	}
	if resp.DeviceCode == "" {
		return nil, errors.New("device authorization response missing device_code")
	}
	interval := time.Duration(resp.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &DeviceCode{
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		ExpiresIn:       time.Duration(resp.ExpiresIn) * time.Second,
		deviceCode:      resp.DeviceCode,
		interval:        interval,
	}, nil
}

// Wait polls until the user approves the device, the code expires, or ctx is
// cancelled. Returns the granted access token.
func (f *DeviceFlow) Wait(ctx context.Context, code *DeviceCode) (string, error) {
	deadline := time.Now().Add(code.ExpiresIn)
	interval := code.interval
	form := url.Values{
		"client_id":   {f.clientID},
		"device_code": {code.deviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
		if time.Now().After(deadline) {
			return "", errors.New("device code expired before authorization")
		}

		var resp struct {
			AccessToken string `json:"access_token"`
			Error       string `json:"error"`
			Interval    int    `json:"interval"`
		}
		if err := f.postForm(ctx, f.tokenURL, form, &resp); err != nil {
			return "", fmt.Errorf("polling for access token: %w", err)
		}
		switch resp.Error {
		case "":
			if resp.AccessToken == "" {
				return "", errors.New("authorization response missing access_token")
			}
			return resp.AccessToken, nil
		case "authorization_pending":
			continue
		case "slow_down":
			if resp.Interval > 0 {
				interval = time.Duration(resp.Interval) * time.Second
			} else {
				interval += 5 * time.Second
			}
		case "expired_token":
			return "", errors.New("device code expired before authorization")
		case "access_denied":
			return "", fmt.Errorf("%w: authorization denied by user", ErrForbidden)
		default:
			return "", fmt.Errorf("device authorization failed: %s", resp.Error)
		}
	}
}

func (f *DeviceFlow) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ValidateToken checks that a token authenticates and reports the login it
// belongs to, along with remaining core rate limit.
func ValidateToken(ctx context.Context, token string, httpClient *http.Client) (string, int, error) {
	var gh *github.Client
	if httpClient != nil {
		gh = github.NewClient(httpClient)
	} else {
		gh = github.NewClient(nil).WithAuthToken(token)
	}
	user, resp, err := gh.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return "", 0, fmt.Errorf("%w: token rejected", ErrForbidden)
		}
		return "", 0, translate(err)
	}
	remaining := 0
	if resp != nil {
		if v := resp.Header.Get("X-Ratelimit-Remaining"); v != "" {
			remaining, _ = strconv.Atoi(v)
		}
	}
	return user.GetLogin(), remaining, nil
}
