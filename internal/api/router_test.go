package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/config"
	"github.com/masterskaya-studio/site-backend/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// healthCheckHandler
// ---------------------------------------------------------------------------

func newHealthDB(t *testing.T, pingOK bool) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if pingOK {
		mock.ExpectPing()
	} else {
		mock.ExpectPing().WillReturnError(sql.ErrConnDone)
	}
	return db
}

func TestHealthCheckHandler_Healthy(t *testing.T) {
	db := newHealthDB(t, true)

	r := gin.New()
	r.GET("/healthz", healthCheckHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
}

func TestHealthCheckHandler_Unhealthy(t *testing.T) {
	db := newHealthDB(t, false)

	r := gin.New()
	r.GET("/healthz", healthCheckHandler(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

// ---------------------------------------------------------------------------
// uploadsHandler
// ---------------------------------------------------------------------------

func newUploadsRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewUploadStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewUploadStore: %v", err)
	}
	r := gin.New()
	r.GET("/uploads/*filepath", uploadsHandler(store))
	return r, dir
}

func TestUploadsHandler_ServesStoredFile(t *testing.T) {
	r, dir := newUploadsRouter(t)

	if err := os.MkdirAll(filepath.Join(dir, "2026-08"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2026-08", "hero.webp"), []byte("webp-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/2026-08/hero.webp", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "webp-bytes" {
		t.Errorf("body = %q, want stored bytes", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/webp" {
		t.Errorf("Content-Type = %q, want image/webp", ct)
	}
}

func TestUploadsHandler_MissingFile(t *testing.T) {
	r, _ := newUploadsRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/2026-08/nope.webp", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUploadsHandler_RejectsTraversal(t *testing.T) {
	r, dir := newUploadsRouter(t)

	// A file just outside the uploads root that must stay unreachable.
	secret := filepath.Join(filepath.Dir(dir), "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o600); err != nil {
		t.Fatal(err)
	}

	paths := []string{
		"/uploads/../secret.txt",
		"/uploads/..%2fsecret.txt",
		"/uploads/2026-08/../../secret.txt",
	}
	for _, p := range paths {
		req := httptest.NewRequest(http.MethodGet, p, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			t.Errorf("GET %s = 200, traversal must not be served", p)
		}
		if w.Body.String() == "secret" {
			t.Errorf("GET %s leaked file contents outside the uploads root", p)
		}
	}
}

// ---------------------------------------------------------------------------
// NewRouter wiring
// ---------------------------------------------------------------------------

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Uploads.BasePath = t.TempDir()
	cfg.Uploads.PublicPath = "/uploads"
	cfg.Uploads.MaxUploadMB = 15
	cfg.Uploads.WebPQuality = 82
	cfg.Auth.CookieName = "admin_session"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.BcryptCost = 10
	cfg.Cache.TTL = time.Minute
	cfg.Jobs.SessionReaperInterval = time.Hour
	return cfg
}

func TestNewRouter_AdminRoutesRequireSession(t *testing.T) {
	// Unordered matching: the session reaper's startup purge races the
	// request-driven queries.
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec("DELETE FROM admin_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))

	router, bg := NewRouter(testConfig(t), db)
	defer bg.Shutdown()

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/me"},
		{http.MethodGet, "/api/admin/projects"},
		{http.MethodPost, "/api/admin/projects"},
		{http.MethodGet, "/api/admin/team"},
		{http.MethodGet, "/api/admin/seo"},
		{http.MethodGet, "/api/admin/media/library"},
		{http.MethodGet, "/api/admin/blocks"},
	}
	for _, route := range protected {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without cookie = %d, want 401", route.method, route.path, w.Code)
		}
	}
}

func TestNewRouter_PublicRoutesRegistered(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	mock.ExpectExec("DELETE FROM admin_sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM projects").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slug", "title", "tagline", "location", "year", "area", "scope", "intro",
			"hero_image_url", "display_order", "categories", "content", "created_at", "updated_at",
		}))

	router, bg := NewRouter(testConfig(t), db)
	defer bg.Shutdown()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/projects = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}
