package admin

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/masterskaya-studio/site-backend/internal/db/repositories"
	"github.com/masterskaya-studio/site-backend/internal/images"
	"github.com/masterskaya-studio/site-backend/internal/revalidate"
	"github.com/masterskaya-studio/site-backend/internal/site"
	"github.com/masterskaya-studio/site-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediaEnv(t *testing.T) (*MediaHandlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewUploadStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	media := repositories.NewMediaRepository(db)
	content := site.NewContent(
		repositories.NewProjectRepository(db),
		repositories.NewTeamRepository(db),
		repositories.NewSeoRepository(db),
		repositories.NewSettingsRepository(db),
		time.Minute,
	)
	optimizer := images.NewOptimizer("", 82, 1<<20)
	h := NewMediaHandlers(media, store, optimizer, content,
		revalidate.NewClient("", "", time.Second), 1<<20)
	return h, mock
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartUpload(t *testing.T, field, filename, contentType string, data []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadHandler_OptimizesAndRegisters(t *testing.T) {
	h, mock := newMediaEnv(t)

	mock.ExpectQuery("SELECT id, url, title, created_at FROM media_assets WHERE url").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO media_assets").
		WillReturnResult(sqlmock.NewResult(1, 1))

	body, ctype := multipartUpload(t, "file", "фасад.png", "image/png", pngBytes(t),
		map[string]string{"title": "Фасад"})

	r := gin.New()
	r.POST("/upload", h.UploadHandler())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	asset, ok := resp["asset"].(map[string]interface{})
	require.True(t, ok, "response must contain the registered asset")
	url, _ := asset["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/"), "url = %q", url)
	assert.NotEqual(t, "original", resp["format"], "a decodable PNG must be converted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadHandler_RejectsNonImage(t *testing.T) {
	h, _ := newMediaEnv(t)

	body, ctype := multipartUpload(t, "file", "notes.txt", "text/plain",
		[]byte("not an image"), nil)

	r := gin.New()
	r.POST("/upload", h.UploadHandler())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadHandler_MissingFileField(t *testing.T) {
	h, _ := newMediaEnv(t)

	r := gin.New()
	r.POST("/upload", h.UploadHandler())

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFetchHandler_DownloadsAndStores(t *testing.T) {
	h, mock := newMediaEnv(t)

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes(t))
	}))
	defer remote.Close()

	mock.ExpectQuery("SELECT id, url, title, created_at FROM media_assets WHERE url").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO media_assets").
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := gin.New()
	r.POST("/fetch", h.FetchHandler())
	w := postJSON(t, r, "/fetch", gin.H{"url": remote.URL + "/plan.png", "title": "План"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchHandler_RejectsNonHTTPURL(t *testing.T) {
	h, _ := newMediaEnv(t)

	r := gin.New()
	r.POST("/fetch", h.FetchHandler())
	w := postJSON(t, r, "/fetch", gin.H{"url": "file:///etc/passwd"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAssetHandler_NotFound(t *testing.T) {
	h, mock := newMediaEnv(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT url FROM media_assets WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"url"}))
	mock.ExpectCommit()

	r := gin.New()
	r.DELETE("/library/:id", h.DeleteAssetHandler())

	req := httptest.NewRequest(http.MethodDelete, "/library/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
