package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaVerifier checks CAPTCHA response tokens against a provider's verify
// endpoint (Yandex SmartCaptcha / hCaptcha style: POST form with secret and
// token, JSON response). When no secret is configured the verifier is
// disabled and accepts everything.
type CaptchaVerifier struct {
	endpoint string
	secret   string
	client   *http.Client
}

// NewCaptchaVerifier builds a verifier for the given endpoint and secret.
// An empty secret disables verification.
func NewCaptchaVerifier(endpoint, secret string) *CaptchaVerifier {
	return &CaptchaVerifier{
		endpoint: endpoint,
		secret:   secret,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether CAPTCHA checking is configured.
func (v *CaptchaVerifier) Enabled() bool {
	return v.secret != "" && v.endpoint != ""
}

// Verify checks a client-supplied CAPTCHA token. Disabled verifiers always
// pass. A missing token on an enabled verifier fails without a network call.
func (v *CaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if !v.Enabled() {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("token", token)
	if remoteIP != "" {
		form.Set("ip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Status  string `json:"status"`
		Success bool   `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("captcha verify response malformed: %w", err)
	}

	// SmartCaptcha responds with status "ok"; hCaptcha-compatible providers
	// use a success boolean.
	return result.Status == "ok" || result.Success, nil
}
