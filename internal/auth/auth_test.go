package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4) // min cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "anything") {
		t.Error("malformed hash must never verify")
	}
}

func TestFailureDelay_InRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := FailureDelay()
		if d < 200*time.Millisecond || d >= 400*time.Millisecond {
			t.Fatalf("delay %v outside [200ms, 400ms)", d)
		}
	}
}

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	b, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64", len(a))
	}
	if a == b {
		t.Error("two tokens must not collide")
	}
}

func TestCaptchaVerifier_DisabledAcceptsAll(t *testing.T) {
	v := NewCaptchaVerifier("", "")
	ok, err := v.Verify(context.Background(), "", "")
	if err != nil || !ok {
		t.Errorf("disabled verifier: ok=%v err=%v, want true, nil", ok, err)
	}
}

func TestCaptchaVerifier_EnabledRejectsEmptyToken(t *testing.T) {
	v := NewCaptchaVerifier("https://captcha.example/validate", "secret")
	ok, err := v.Verify(context.Background(), "", "1.2.3.4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("empty token must fail without a network call")
	}
}

func TestCaptchaVerifier_ProviderResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"smartcaptcha ok", `{"status":"ok"}`, true},
		{"smartcaptcha failed", `{"status":"failed"}`, false},
		{"hcaptcha success", `{"success":true}`, true},
		{"hcaptcha failure", `{"success":false}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("ParseForm: %v", err)
				}
				if r.PostForm.Get("secret") != "secret" {
					t.Errorf("secret not forwarded")
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			v := NewCaptchaVerifier(srv.URL, "secret")
			ok, err := v.Verify(context.Background(), "client-token", "1.2.3.4")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("ok = %v, want %v", ok, tt.want)
			}
		})
	}
}
