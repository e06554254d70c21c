package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/postloop/postloop/internal/model"
	appErr "github.com/postloop/postloop/internal/pkg/errors"
	"github.com/postloop/postloop/internal/pkg/errcode"
	"github.com/postloop/postloop/internal/pkg/jwt"
	"github.com/postloop/postloop/internal/service"
)

// memStore is a minimal in-memory service.EntryStore for route tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string]*model.Entry
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]*model.Entry{}}
}

func (m *memStore) FindByMatch(ctx context.Context, tenantID string, match map[string]string) (*model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		if match["title"] == e.Title && match["calendar_date"] == e.CalendarDate {
			clone := *e
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m *memStore) CreateBatch(ctx context.Context, entries []*model.Entry) []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	errs := make([]error, len(entries))
	for _, e := range entries {
		clone := *e
		m.entries[e.ID] = &clone
	}
	return errs
}

func (m *memStore) Update(ctx context.Context, entry *model.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return appErr.ErrNotFound
	}
	clone := *entry
	m.entries[entry.ID] = &clone
	return nil
}

func (m *memStore) List(ctx context.Context, tenantID string, filter model.Filter) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Entry
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		if len(filter.Status) > 0 && filter.Status[0] != e.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *memStore) DeleteByFilter(ctx context.Context, tenantID string, filter model.Filter) (int64, error) {
	matched, _ := m.List(ctx, tenantID, filter)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range matched {
		delete(m.entries, e.ID)
	}
	return int64(len(matched)), nil
}

func (m *memStore) ListDue(ctx context.Context, date, timeSlot string) ([]model.Entry, error) {
	return nil, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, tenantID, id, status string, mtime int64) error {
	return nil
}

// memFiles is an in-memory filestore.Store for artifact route tests.
type memFiles struct {
	data map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{data: map[string][]byte{}}
}

func (m *memFiles) Type() string { return "mem" }

func (m *memFiles) Save(ctx context.Context, key string, data []byte) error {
	m.data[key] = data
	return nil
}

func (m *memFiles) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

var testJWTSecret = []byte("test-secret")

func setupRouter(t *testing.T) (http.Handler, *memStore, *memFiles, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	files := newMemFiles()

	deps := RouterDeps{
		Calendar: NewCalendarHandler(
			service.NewImportService(store, nil, nil),
			service.NewExportService(store, files, nil, nil),
			service.NewCalendarService(store),
		),
		Templates: NewTemplateHandler(service.NewTemplateService()),
		Files:     NewFileHandler(files),
		JWTSecret: testJWTSecret,
	}

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1"), deps)

	token, err := jwt.GenerateToken("tenant-1", "tester", testJWTSecret, time.Hour)
	require.NoError(t, err)
	return engine, store, files, token
}

func doJSON(t *testing.T, router http.Handler, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

const testCSV = "title,calendar_date,time_slot,target_platforms\n" +
	"Post A,2024-12-27,09:00,twitter\n" +
	"Post B,2024-12-28,10:00,linkedin\n"

func TestImportEndpoint(t *testing.T) {
	router, store, _, token := setupRouter(t)

	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{
		"csv_text": testCSV,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope(t, resp)
	require.Zero(t, env.Code)
	var data struct {
		Result model.ImportResult     `json:"result"`
		Report model.ValidationReport `json:"report"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, data.Result.Success)
	require.Equal(t, 2, data.Result.Created)
	require.Equal(t, 2, data.Report.ValidRows)

	store.mu.Lock()
	require.Len(t, store.entries, 2)
	store.mu.Unlock()
}

func TestImportEndpointSchemaError(t *testing.T) {
	router, _, _, token := setupRouter(t)

	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{
		"csv_text": "title,description\nPost,Body\n",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrSchema), env.Code)
	var report model.HeaderReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.False(t, report.Valid)
	require.Contains(t, report.Missing, "calendar_date")
}

func TestImportEndpointRequiresAuth(t *testing.T) {
	router, _, _, _ := setupRouter(t)

	resp := doJSON(t, router, "", http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{
		"csv_text": testCSV,
	})
	env := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrUnauthorized), env.Code)
}

func TestImportEndpointEmptyBody(t *testing.T) {
	router, _, _, token := setupRouter(t)

	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{})
	env := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), env.Code)
}

func TestValidateEndpoint(t *testing.T) {
	router, store, _, token := setupRouter(t)

	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/validate", map[string]interface{}{
		"csv_text": testCSV,
	})
	env := decodeEnvelope(t, resp)
	require.Zero(t, env.Code)
	var report model.ValidationReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	require.True(t, report.IsValid)
	require.Equal(t, 2, report.TotalRows)

	store.mu.Lock()
	require.Empty(t, store.entries)
	store.mu.Unlock()
}

func TestExportEndpointCSVAttachment(t *testing.T) {
	router, _, _, token := setupRouter(t)

	doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{
		"csv_text": testCSV,
	})
	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/export", map[string]interface{}{
		"options": map[string]interface{}{"format": "csv"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")
	require.Contains(t, resp.Body.String(), "Post A")
}

func TestExportEndpointNoData(t *testing.T) {
	router, _, _, token := setupRouter(t)

	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/export", map[string]interface{}{
		"options": map[string]interface{}{"format": "csv"},
	})
	env := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrNoData), env.Code)
}

func TestBulkDeleteEndpoint(t *testing.T) {
	router, _, _, token := setupRouter(t)

	doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{
		"csv_text": testCSV,
	})

	// refused without confirmation
	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/bulk-delete", map[string]interface{}{
		"filter": map[string]interface{}{"status": []string{"planned"}},
	})
	env := decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrPrecondition), env.Code)

	resp = doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/bulk-delete", map[string]interface{}{
		"filter":  map[string]interface{}{"status": []string{"planned"}},
		"confirm": true,
	})
	env = decodeEnvelope(t, resp)
	require.Zero(t, env.Code)
	var data struct {
		DeletedCount int64 `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.EqualValues(t, 2, data.DeletedCount)
}

func TestBulkUpdateEndpoint(t *testing.T) {
	router, _, _, token := setupRouter(t)

	doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/import", map[string]interface{}{
		"csv_text": testCSV,
	})
	resp := doJSON(t, router, token, http.MethodPost, "/api/v1/calendar/bulk-update", map[string]interface{}{
		"csv_text": testCSV,
		"options":  map[string]interface{}{"update_mode": "replace"},
	})
	env := decodeEnvelope(t, resp)
	require.Zero(t, env.Code)
	var data struct {
		Result model.ImportResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, 2, data.Result.Updated)
}

func TestTemplateEndpoint(t *testing.T) {
	router, _, _, token := setupRouter(t)

	resp := doJSON(t, router, token, http.MethodGet, "/api/v1/calendar/template?include_examples=true", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Body.String(), "title,description,calendar_date")

	resp = doJSON(t, router, token, http.MethodGet, "/api/v1/calendar/template?format=json", nil)
	env := decodeEnvelope(t, resp)
	require.Zero(t, env.Code)
	require.Contains(t, string(env.Data), "required_columns")

	resp = doJSON(t, router, token, http.MethodGet, "/api/v1/calendar/template?format=pdf", nil)
	env = decodeEnvelope(t, resp)
	require.Equal(t, int(errcode.ErrInvalid), env.Code)
}
