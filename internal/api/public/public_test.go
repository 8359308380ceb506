package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/site"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func newEnv(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	settings := repositories.NewSettingsRepository(db)
	content := site.NewContent(
		repositories.NewProjectRepository(db),
		repositories.NewTeamRepository(db),
		repositories.NewSeoRepository(db),
		settings,
		time.Minute,
	)
	h := NewHandlers(content, settings)

	r := gin.New()
	r.GET("/api/projects", h.ListProjectsHandler())
	r.GET("/api/projects/:slug", h.GetProjectHandler())
	r.GET("/api/team", h.ListTeamHandler())
	r.GET("/api/settings/:key", h.GetSettingHandler())
	r.GET("/api/seo/:slug", h.GetPageSeoHandler())
	return r, mock
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListProjects_SecondReadServedFromCache(t *testing.T) {
	r, mock := newEnv(t)

	// One database query for two requests: the second read hits the cache.
	mock.ExpectQuery("SELECT.*FROM projects.*ORDER BY display_order").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "slug", "title", "tagline", "location", "year", "area", "scope", "intro",
			"hero_image_url", "display_order", "categories", "content", "created_at", "updated_at",
		}).AddRow("p1", "dom-u-ozera", "Дом у озера", nil, nil, nil, nil, nil, nil,
			nil, 0, nil, nil, time.Now(), time.Now()))

	for i := 0; i < 2; i++ {
		w := get(r, "/api/projects")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200; body: %s", i, w.Code, w.Body.String())
		}
		if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("Cache-Control = %q, want no-store", cc)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("second request must not query the database: %v", err)
	}
}

func TestGetProject_UnknownSlug(t *testing.T) {
	r, mock := newEnv(t)

	mock.ExpectQuery("SELECT.*FROM projects WHERE slug").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := get(r, "/api/projects/ghost")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetSetting_UnknownKey(t *testing.T) {
	r, _ := newEnv(t)

	w := get(r, "/api/settings/banner")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown setting key", w.Code)
	}
}

func TestGetSetting_UnsetKnownKeyReturnsEmptyDocument(t *testing.T) {
	r, mock := newEnv(t)

	mock.ExpectQuery("SELECT.*FROM site_settings").
		WithArgs("contact").
		WillReturnRows(sqlmock.NewRows([]string{"setting_key"}))

	w := get(r, "/api/settings/contact")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var body struct {
		Setting struct {
			Key   string                 `json:"key"`
			Value map[string]interface{} `json:"value"`
		} `json:"setting"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Setting.Key != "contact" || len(body.Setting.Value) != 0 {
		t.Errorf("unexpected empty-document shape: %+v", body.Setting)
	}
}

func TestGetSetting_GlobalBlocks(t *testing.T) {
	r, mock := newEnv(t)

	mock.ExpectQuery("SELECT.*FROM global_blocks").
		WillReturnRows(sqlmock.NewRows([]string{"slug", "data", "updated_at"}).
			AddRow("home-hero", []byte(`{"imageUrl":"/uploads/hero.avif"}`), time.Now()))

	w := get(r, "/api/settings/global-blocks")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var body struct {
		Blocks []struct {
			Slug string `json:"slug"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Blocks) != 1 || body.Blocks[0].Slug != "home-hero" {
		t.Errorf("blocks = %+v, want the home-hero block", body.Blocks)
	}
}

func TestGetPageSeo_NoOverride(t *testing.T) {
	r, mock := newEnv(t)

	mock.ExpectQuery("SELECT.*FROM page_seo").
		WithArgs("kontakty").
		WillReturnRows(sqlmock.NewRows([]string{"slug"}))

	w := get(r, "/api/seo/kontakty")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, present := body["page"]; !present || v != nil {
		t.Errorf("page = %v, want explicit null", v)
	}
}
