package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, want 3306", cfg.Database.Port)
	}
	if cfg.Auth.CookieName != "admin_session" {
		t.Errorf("Auth.CookieName = %q, want admin_session", cfg.Auth.CookieName)
	}
	if cfg.Auth.SessionTTL != 7*24*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 168h", cfg.Auth.SessionTTL)
	}
	if cfg.Uploads.MaxUploadMB != 15 {
		t.Errorf("Uploads.MaxUploadMB = %d, want 15", cfg.Uploads.MaxUploadMB)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("Cache.TTL = %v, want 60s", cfg.Cache.TTL)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9000
  production: true
database:
  name: studio_test
auth:
  session_ttl: 24h
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.Server.Production {
		t.Error("Server.Production = false, want true")
	}
	if cfg.Database.Name != "studio_test" {
		t.Errorf("Database.Name = %q, want studio_test", cfg.Database.Name)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("Auth.SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STUDIO_DATABASE_HOST", "db.internal")
	t.Setenv("STUDIO_SERVER_PORT", "8090")

	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
}

func TestLoad_PasswordExpansion(t *testing.T) {
	t.Setenv("TEST_DB_SECRET", "s3cret")
	cfg, err := Load(writeConfig(t, "database:\n  password: ${TEST_DB_SECRET}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("Database.Password = %q, want expanded secret", cfg.Database.Password)
	}
}

func TestGetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "localhost", Port: 3306, Name: "studio_site", User: "studio", Password: "pw"}
	dsn := c.GetDSN()
	want := "studio:pw@tcp(localhost:3306)/studio_site?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci"
	if dsn != want {
		t.Errorf("GetDSN() = %q, want %q", dsn, want)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"missing db name", func(c *Config) { c.Database.Name = "" }},
		{"missing uploads path", func(c *Config) { c.Uploads.BasePath = "" }},
		{"relative public path", func(c *Config) { c.Uploads.PublicPath = "uploads" }},
		{"low bcrypt cost", func(c *Config) { c.Auth.BcryptCost = 4 }},
		{"captcha without secret", func(c *Config) { c.Auth.Captcha.Enabled = true }},
		{"tls without cert", func(c *Config) { c.Security.TLS.Enabled = true }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "{}"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
