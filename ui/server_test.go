package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godash/adapters/export"
	"godash/adapters/llm"
	"godash/app"
	"godash/domain/core"
	"godash/domain/dashboard"
	"godash/domain/stats"
	"godash/internal/analysis"
	"godash/internal/auth"
	"godash/internal/cache"
	"godash/internal/tables"
	"godash/models"
)

const salesCSV = "date,region,revenue\n" +
	"2025-01-01,west,10\n" +
	"2025-01-02,east,12\n" +
	"2025-01-03,west,15\n"

// scriptedReply is the canned model output for analyze calls. The third chart
// references only the nonexistent "profit" column, so validation has
// something to repair end to end.
const scriptedReply = `{
  "charts": [
    {"type": "line", "title": "Revenue Over Time", "xAxis": "date", "series": [{"column": "revenue", "role": "line", "stroke": "#8884d8"}], "showGrid": true, "showTooltip": true},
    {"type": "bar", "title": "Revenue by Region", "xAxis": "region", "series": [{"column": "revenue", "role": "bar"}]},
    {"type": "area", "title": "Profit Trend", "xAxis": "date", "series": [{"column": "profit", "role": "area"}]},
    {"type": "pie", "title": "Regional Share", "series": [{"column": "region", "role": "pie"}], "showLegend": true}
  ],
  "tableDescriptions": [
    {"title": "Revenue Summary", "kind": "summary_statistics", "columns": ["revenue"]},
    {"title": "Region Breakdown", "kind": "frequency_distribution", "column": "region"}
  ],
  "metrics": [
    {"label": "Total Revenue", "value": 37, "unit": "USD"},
    {"label": "Regions", "value": 2}
  ],
  "summary": "Revenue **grows** steadily across the period."
}`

type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *stubUserRepo) CreateAnonymous(ctx context.Context, displayName string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	user := &models.User{ID: uuid.New(), DisplayName: displayName, IsAnonymous: true, CreatedAt: now, LastSeenAt: now}
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return user, nil
}

func (r *stubUserRepo) TouchLastSeen(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.LastSeenAt = time.Now().UTC()
	}
	return nil
}

type stubDashboardRepo struct {
	mu        sync.Mutex
	snapshots map[core.DashboardID]*dashboard.Snapshot
}

func newStubDashboardRepo() *stubDashboardRepo {
	return &stubDashboardRepo{snapshots: make(map[core.DashboardID]*dashboard.Snapshot)}
}

func (r *stubDashboardRepo) Save(ctx context.Context, snapshot *dashboard.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.ID] = snapshot
	return nil
}

func (r *stubDashboardRepo) GetByID(ctx context.Context, id core.DashboardID) (*dashboard.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.snapshots[id]
	if !ok {
		return nil, core.ErrDashboardNotFound
	}
	return snapshot, nil
}

func (r *stubDashboardRepo) ListByUser(ctx context.Context, userID core.UserID) ([]*dashboard.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dashboard.Snapshot
	for _, snapshot := range r.snapshots {
		if snapshot.UserID == userID {
			out = append(out, snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubDashboardRepo) Delete(ctx context.Context, id core.DashboardID, userID core.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.snapshots[id]
	if !ok || snapshot.UserID != userID {
		return core.ErrDashboardNotFound
	}
	delete(r.snapshots, id)
	return nil
}

type harness struct {
	handler http.Handler
	model   *llm.MockLLMClient
	repo    *stubDashboardRepo
}

func newHarness(t *testing.T) *harness {
	return newHarnessWith(t, Config{Port: "0", MaxUploadBytes: 1 << 20})
}

func newHarnessWith(t *testing.T, cfg Config) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	model := &llm.MockLLMClient{Response: scriptedReply}
	datasets := cache.NewDatasetCache(time.Hour)
	tokens := auth.NewTokenService("ui-test-secret", time.Hour)
	repo := newStubDashboardRepo()

	srv := NewServer(cfg, Dependencies{
		Sessions:   app.NewSessionService(newStubUserRepo(), tokens),
		Analyses:   app.NewAnalysisService(llm.NewDashboardGenerator(model), datasets, tables.NewMaterializer(analysis.NewEngine()), 2),
		Dashboards: app.NewDashboardService(repo, export.NewXLSXExporter()),
		Datasets:   datasets,
		Tokens:     tokens,
	})
	return &harness{handler: srv.Handler(), model: model, repo: repo}
}

func (h *harness) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) signIn(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/session", "", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token, session.User.ID
}

func (h *harness) uploadCSV(t *testing.T, token, filename, content string) string {
	t.Helper()
	body, contentType := multipartFile(t, filename, content)
	w := h.do(t, http.MethodPost, "/api/v1/datasets", token, body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func (h *harness) analyze(t *testing.T, token, datasetID string) app.AnalysisResult {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/v1/datasets/"+datasetID+"/analyze", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result app.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Config)
	return result
}

func multipartFile(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("dataset", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func saveBody(title string) map[string]any {
	return map[string]any{
		"title":          title,
		"datasetName":    "sales.csv",
		"datasetColumns": []string{"date", "region", "revenue"},
		"config": map[string]any{
			"metrics": []map[string]any{{"label": "Rows", "value": 3}},
		},
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/healthz", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}

func TestRoutesRequireAuthentication(t *testing.T) {
	h := newHarness(t)
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/session"},
		{http.MethodPost, "/api/v1/datasets"},
		{http.MethodPost, "/api/v1/datasets/abc/analyze"},
		{http.MethodPost, "/api/v1/dashboards"},
		{http.MethodGet, "/api/v1/dashboards"},
		{http.MethodGet, "/api/v1/dashboards/abc"},
		{http.MethodDelete, "/api/v1/dashboards/abc"},
		{http.MethodGet, "/api/v1/dashboards/abc/export"},
	}
	for _, route := range routes {
		w := h.do(t, route.method, route.path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestCreateSessionIssuesWorkingToken(t *testing.T) {
	h := newHarness(t)
	token, userID := h.signIn(t)

	w := h.do(t, http.MethodGet, "/api/v1/session", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, userID, user.ID)
	assert.True(t, user.IsAnonymous)
	assert.NotEmpty(t, user.DisplayName)
}

func TestUploadReturnsSchema(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	body, contentType := multipartFile(t, "sales.csv", salesCSV)
	w := h.do(t, http.MethodPost, "/api/v1/datasets", token, body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Columns     []string `json:"columns"`
		RecordCount int      `json:"recordCount"`
		Profile     []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "sales.csv", resp.Name)
	assert.Equal(t, []string{"date", "region", "revenue"}, resp.Columns)
	assert.Equal(t, 3, resp.RecordCount)
	require.Len(t, resp.Profile, 3)
	assert.Equal(t, "revenue", resp.Profile[2].Name)
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	body, contentType := multipartFile(t, "notes.txt", "just some text")
	w := h.do(t, http.MethodPost, "/api/v1/datasets", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported dataset format")
}

func TestUploadRejectsMissingFileField(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	w := h.do(t, http.MethodPost, "/api/v1/datasets", token, &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "dataset")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	h := newHarnessWith(t, Config{Port: "0", MaxUploadBytes: 64})
	token, _ := h.signIn(t)

	big := salesCSV + strings.Repeat("2025-01-04,north,99\n", 20)
	body, contentType := multipartFile(t, "big.csv", big)
	w := h.do(t, http.MethodPost, "/api/v1/datasets", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds")
}

func TestAnalyzeUnknownDatasetReturns404(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	w := h.do(t, http.MethodPost, "/api/v1/datasets/"+core.NewID().String()+"/analyze", token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeForeignDatasetReturns404(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.signIn(t)
	bob, _ := h.signIn(t)

	datasetID := h.uploadCSV(t, alice, "sales.csv", salesCSV)
	w := h.do(t, http.MethodPost, "/api/v1/datasets/"+datasetID+"/analyze", bob, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeUpstreamGarbageReturns502(t *testing.T) {
	h := newHarness(t)
	h.model.Response = "the model rambled instead of emitting JSON"
	token, _ := h.signIn(t)

	datasetID := h.uploadCSV(t, token, "sales.csv", salesCSV)
	w := h.do(t, http.MethodPost, "/api/v1/datasets/"+datasetID+"/analyze", token, nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAnalyzeComputesTablesLocally(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	datasetID := h.uploadCSV(t, token, "sales.csv", salesCSV)
	result := h.analyze(t, token, datasetID)

	assert.Equal(t, int64(1), result.Seq)
	assert.False(t, result.Superseded)
	assert.Equal(t, []string{"date", "region", "revenue"}, result.Columns)
	assert.Equal(t, 3, result.RecordCount)
	assert.Len(t, result.Config.Metrics, 2)
	assert.Contains(t, result.SummaryHTML, "<strong>grows</strong>")

	require.Len(t, result.Config.Tables, 2)
	summary := result.Config.Tables[0].Data
	require.NotNil(t, summary)
	revenue, ok := summary.Summary["revenue"]
	require.True(t, ok)
	assert.Equal(t, 3, revenue.Count)
	assert.Equal(t, 12.33, revenue.Mean)
	assert.Equal(t, 12.0, revenue.Median)
	assert.Equal(t, 10.0, revenue.Min)
	assert.Equal(t, 15.0, revenue.Max)
	assert.Equal(t, 2.05, revenue.StdDev)

	freq := result.Config.Tables[1].Data
	require.NotNil(t, freq)
	region, ok := freq.Frequency["region"]
	require.True(t, ok)
	assert.Equal(t, []stats.FrequencyEntry{
		{Value: "west", Count: 2},
		{Value: "east", Count: 1},
	}, region.Entries())
}

func TestAnalyzeRepairsHallucinatedColumns(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	datasetID := h.uploadCSV(t, token, "sales.csv", salesCSV)
	result := h.analyze(t, token, datasetID)

	require.Len(t, result.Config.Charts, 4)
	for _, chart := range result.Config.Charts {
		require.NotEmpty(t, chart.Series, "chart %q lost every series", chart.Title)
		for _, series := range chart.Series {
			assert.Contains(t, result.Columns, series.Column, "chart %q", chart.Title)
		}
		if chart.XAxis != "" {
			assert.Contains(t, result.Columns, chart.XAxis, "chart %q", chart.Title)
		}
	}
}

func TestFullDashboardLifecycle(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	datasetID := h.uploadCSV(t, token, "sales.csv", salesCSV)
	result := h.analyze(t, token, datasetID)

	w := h.do(t, http.MethodPost, "/api/v1/dashboards", token, jsonBody(t, map[string]any{
		"title":          "Q3 Sales",
		"datasetName":    result.DatasetName,
		"datasetColumns": result.Columns,
		"config":         result.Config,
	}), "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var saved dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "Q3 Sales", saved.Title)
	require.False(t, core.ID(saved.ID).IsEmpty())

	w = h.do(t, http.MethodGet, "/api/v1/dashboards", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Dashboards []dashboardListItem `json:"dashboards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Dashboards, 1)
	assert.Equal(t, saved.ID, listing.Dashboards[0].ID)
	assert.Equal(t, 4, listing.Dashboards[0].ChartCount)
	assert.Equal(t, 2, listing.Dashboards[0].TableCount)
	assert.Equal(t, 2, listing.Dashboards[0].MetricCount)

	w = h.do(t, http.MethodGet, "/api/v1/dashboards/"+saved.ID.String(), token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, saved.ID, fetched.ID)
	require.Len(t, fetched.Config.Tables, 2)
	// materialized data survives the save/load round trip
	require.NotNil(t, fetched.Config.Tables[0].Data)
	assert.Equal(t, 3, fetched.Config.Tables[0].Data.Summary["revenue"].Count)

	w = h.do(t, http.MethodGet, "/api/v1/dashboards/"+saved.ID.String()+"/export", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="Q3_Sales.xlsx"`)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	// xlsx is a zip container
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = h.do(t, http.MethodDelete, "/api/v1/dashboards/"+saved.ID.String(), token, nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = h.do(t, http.MethodGet, "/api/v1/dashboards/"+saved.ID.String(), token, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveDashboardRejectsBadPayloads(t *testing.T) {
	h := newHarness(t)
	token, _ := h.signIn(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{
			name: "missing dataset name",
			payload: map[string]any{
				"datasetColumns": []string{"a"},
				"config":         map[string]any{"metrics": []map[string]any{{"label": "Rows", "value": 1}}},
			},
		},
		{
			name: "no dataset columns",
			payload: map[string]any{
				"datasetName": "sales.csv",
				"config":      map[string]any{"metrics": []map[string]any{{"label": "Rows", "value": 1}}},
			},
		},
		{
			name: "empty config",
			payload: map[string]any{
				"datasetName":    "sales.csv",
				"datasetColumns": []string{"a"},
				"config":         map[string]any{},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/api/v1/dashboards", token, jsonBody(t, tc.payload), "application/json")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestDashboardOwnershipIsolation(t *testing.T) {
	h := newHarness(t)
	alice, _ := h.signIn(t)
	bob, _ := h.signIn(t)

	w := h.do(t, http.MethodPost, "/api/v1/dashboards", alice, jsonBody(t, saveBody("Alice Only")), "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var saved dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))

	w = h.do(t, http.MethodGet, "/api/v1/dashboards", bob, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dashboards": []}`, w.Body.String())

	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/dashboards/" + saved.ID.String()},
		{http.MethodGet, "/api/v1/dashboards/" + saved.ID.String() + "/export"},
		{http.MethodDelete, "/api/v1/dashboards/" + saved.ID.String()},
	} {
		w = h.do(t, probe.method, probe.path, bob, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", probe.method, probe.path)
	}

	// still there for the owner
	w = h.do(t, http.MethodGet, "/api/v1/dashboards/"+saved.ID.String(), alice, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListDashboardsNewestFirst(t *testing.T) {
	h := newHarness(t)
	token, userID := h.signIn(t)
	owner := core.UserID(userID.String())

	base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	seed := func(title string, createdAt time.Time, user core.UserID) {
		t.Helper()
		require.NoError(t, h.repo.Save(context.Background(), &dashboard.Snapshot{
			ID:          core.DashboardID(core.NewID()),
			UserID:      user,
			Title:       title,
			DatasetName: "sales.csv",
			Config:      dashboard.Config{Metrics: []dashboard.MetricSpec{{Label: "Rows", Value: 3}}},
			CreatedAt:   createdAt,
		}))
	}
	seed("Older", base, owner)
	seed("Newer", base.Add(time.Hour), owner)
	seed("Foreign", base.Add(2*time.Hour), core.UserID(uuid.NewString()))

	w := h.do(t, http.MethodGet, "/api/v1/dashboards", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Dashboards []dashboardListItem `json:"dashboards"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Dashboards, 2)
	assert.Equal(t, "Newer", listing.Dashboards[0].Title)
	assert.Equal(t, "Older", listing.Dashboards[1].Title)
}

func TestStaticBundleFallback(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>app shell</html>"), 0o644))

	h := newHarnessWith(t, Config{Port: "0", StaticDir: staticDir, MaxUploadBytes: 1 << 20})

	w := h.do(t, http.MethodGet, "/", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app shell")

	// client-side routes resolve to the bundle entrypoint
	w = h.do(t, http.MethodGet, "/dashboards/view/123", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app shell")

	// unknown API routes stay JSON errors
	w = h.do(t, http.MethodGet, "/api/v1/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "not found"}`, w.Body.String())
}
