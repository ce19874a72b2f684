package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/pillarmap-api/internal/ble"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/config"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/influxdb"
	"github.com/nerrad567/pillarmap-api/internal/infrastructure/logging"
	"github.com/nerrad567/pillarmap-api/internal/worker"
)

func strPtr(s string) *string { return &s }

// testServer creates a Server backed by an in-memory SQLite ble table and a
// small worker directory.
func testServer(t *testing.T, opts ...func(*Deps)) *Server {
	t.Helper()

	db := setupTestDB(t)

	deps := Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		Logger: logging.Discard(),
		BLE:    ble.NewService(ble.NewSQLRepository(db)),
		Workers: worker.NewService(worker.NewDirectory([]worker.Info{
			{
				BldgID:       "150",
				Name:         strPtr("Plant A"),
				Driver:       strPtr("Kim"),
				DriverID:     strPtr("D-1501"),
				DriverPhone:  strPtr("010-1"),
				Manager:      strPtr("Lee"),
				ManagerID:    strPtr("M-150"),
				ManagerPhone: strPtr("010-2"),
			},
			{BldgID: "B 7", Name: strPtr("Gate House")},
		})),
		Version: "test",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv
}

// setupTestDB creates an in-memory SQLite database with the ble table.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE ble (
			ble_id TEXT PRIMARY KEY,
			pillar_id INTEGER NOT NULL,
			line INTEGER NOT NULL
		);
		INSERT INTO ble (ble_id, pillar_id, line) VALUES
			('101', 4, 2),
			('201', 8, 3),
			('301', 12, 1);
	`
	if _, execErr := db.Exec(schema); execErr != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", execErr)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func do(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) Error {
	t.Helper()

	var e Error
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return e
}

// ─── Construction ──────────────────────────────────────────────────

func TestNew_RequiresDeps(t *testing.T) {
	svc := ble.NewService(nil)
	workers := worker.NewService(nil)

	tests := []struct {
		name string
		deps Deps
	}{
		{"no logger", Deps{BLE: svc, Workers: workers}},
		{"no ble service", Deps{Logger: logging.Discard(), Workers: workers}},
		{"no worker service", Deps{Logger: logging.Discard(), BLE: svc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

// ─── BLE Endpoint Tests ────────────────────────────────────────────

func TestBLEByPillars(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"single pillar", "/api/ble/by_pillars?pillar_ids=4", []string{"101"}},
		{"spaces and empty tokens", "/api/ble/by_pillars?pillar_ids=4,%208,,12", []string{"101", "201", "301"}},
		{"no match", "/api/ble/by_pillars?pillar_ids=77", []string{}},
		{"empty list", "/api/ble/by_pillars?pillar_ids=", []string{}},
		{"missing parameter", "/api/ble/by_pillars", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, tt.target)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
			}

			body := strings.TrimSpace(w.Body.String())
			if len(tt.want) == 0 && body != "[]" {
				t.Fatalf("body = %s, want []", body)
			}

			var got []ble.Sensor
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sensors, want %d", len(got), len(tt.want))
			}
			for i, s := range got {
				if s.BleID != tt.want[i] {
					t.Errorf("sensor[%d] = %s, want %s", i, s.BleID, tt.want[i])
				}
			}
		})
	}
}

func TestBLEByPillars_WireFormat(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/ble/by_pillars?pillar_ids=4")
	want := `[{"ble_id":"101","pillar_id":4,"line":2}]`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestBLEByPillars_InvalidToken(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/ble/by_pillars?pillar_ids=4,x")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	e := decodeError(t, w)
	if e.Code != ErrCodeBadRequest || !strings.Contains(e.Message, `"x"`) {
		t.Errorf("error = %+v", e)
	}
}

func TestBLEDetail(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/ble/detail?ble_id=101")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got ble.Sensor
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != (ble.Sensor{BleID: "101", PillarID: 4, Line: 2}) {
		t.Errorf("sensor = %+v", got)
	}
}

func TestBLEDetail_NotFound(t *testing.T) {
	srv := testServer(t)

	for _, target := range []string{"/api/ble/detail?ble_id=nope", "/api/ble/detail?ble_id="} {
		w := do(t, srv, http.MethodGet, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, w.Code)
		}
	}
}

func TestBLEDetail_MissingParameter(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/ble/detail")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Message != "ble_id is required" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestBLE_StoreFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT ble_id, pillar_id, line").WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery("SELECT ble_id, pillar_id, line FROM ble WHERE ble_id").WillReturnError(errors.New("connection reset"))

	repo := ble.NewSQLRepository(sqlx.NewDb(mockDB, "sqlmock"))
	srv := testServer(t, func(d *Deps) { d.BLE = ble.NewService(repo) })

	w := do(t, srv, http.MethodGet, "/api/ble/by_pillars?pillar_ids=4")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ErrCodeInternal, decodeError(t, w).Code)
	assert.NotContains(t, w.Body.String(), "connection reset")

	w = do(t, srv, http.MethodGet, "/api/ble/detail?ble_id=101")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Worker Endpoint Tests ─────────────────────────────────────────

func TestGetWorker(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/worker/150")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"bldg_id":       "150",
		"name":          "Plant A",
		"driver":        "Kim",
		"driver_id":     "D-1501",
		"driver_phone":  "010-1",
		"manager":       "Lee",
		"manager_id":    "M-150",
		"manager_phone": "010-2",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestGetWorker_NullFields(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/worker/B%207")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, present := got["driver_phone"]
	if !present || v != nil {
		t.Errorf("driver_phone = %v (present %v), want null", v, present)
	}
}

func TestGetWorker_NotFound(t *testing.T) {
	srv := testServer(t)

	for _, id := range []string{"999", "15", "1500"} {
		w := do(t, srv, http.MethodGet, "/api/worker/"+id)
		if w.Code != http.StatusNotFound {
			t.Errorf("/api/worker/%s status = %d, want 404", id, w.Code)
		}
	}
}

func TestGetWorker_EmptyDirectory(t *testing.T) {
	srv := testServer(t, func(d *Deps) { d.Workers = worker.NewService(worker.NewDirectory(nil)) })

	w := do(t, srv, http.MethodGet, "/api/worker/150")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// An id containing a literal %41 must not be decoded a second time into "aA".
func TestGetWorker_EscapedIDs(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.Workers = worker.NewService(worker.NewDirectory([]worker.Info{
			{BldgID: "a%41", Name: strPtr("Percent")},
			{BldgID: "aA", Name: strPtr("Letter")},
			{BldgID: "x/y", Name: strPtr("Slash")},
		}))
	})

	tests := []struct {
		target string
		want   string
	}{
		{"/api/worker/a%2541", "Percent"},
		{"/api/worker/aA", "Letter"},
		{"/api/worker/a%41", "Letter"},
		{"/api/worker/x%2Fy", "Slash"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, w.Code)

			var got map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got["name"])
		})
	}
}

// ─── Health and Metrics ────────────────────────────────────────────

type fakeDB struct {
	err error
}

func (f fakeDB) HealthCheck(context.Context) error { return f.err }
func (f fakeDB) Stats() sql.DBStats                { return sql.DBStats{OpenConnections: 1, Idle: 1} }
func (f fakeDB) Driver() string                    { return "sqlite3" }
func (f fakeDB) Path() string                      { return "" }

func TestHealth(t *testing.T) {
	srv := testServer(t, func(d *Deps) { d.DB = fakeDB{} })

	w := do(t, srv, http.MethodGet, "/api/health")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "ok" || resp["version"] != "test" {
		t.Errorf("resp = %v", resp)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	srv := testServer(t, func(d *Deps) { d.DB = fakeDB{err: errors.New("no route to host")} })

	w := do(t, srv, http.MethodGet, "/api/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", w.Code)
	}
}

type fakeCheck struct{ err error }

func (f fakeCheck) HealthCheck(context.Context) error { return f.err }

func TestHealth_Components(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.DB = fakeDB{}
		d.Checks = map[string]HealthChecker{
			"mqtt":     fakeCheck{},
			"influxdb": fakeCheck{},
		}
	})

	w := do(t, srv, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]string{"mqtt": "ok", "influxdb": "ok"}, resp.Components)
}

func TestHealth_Degraded(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.DB = fakeDB{}
		d.Checks = map[string]HealthChecker{
			"mqtt":     fakeCheck{err: errors.New("not connected")},
			"influxdb": fakeCheck{},
		}
	})

	w := do(t, srv, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Components["mqtt"])
	assert.Equal(t, "ok", resp.Components["influxdb"])
}

// The database outranks optional components.
func TestHealth_DatabaseDownWithChecks(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.DB = fakeDB{err: errors.New("locked")}
		d.Checks = map[string]HealthChecker{"mqtt": fakeCheck{err: errors.New("down")}}
	})

	w := do(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unavailable"`)
}

type fakeMQTT struct{ connected bool }

func (f fakeMQTT) IsConnected() bool { return f.connected }

func TestMetrics(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.DB = fakeDB{}
		d.MQTT = fakeMQTT{connected: true}
	})

	w := do(t, srv, http.MethodGet, "/api/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", w.Code)
	}

	var m SystemMetrics
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Version != "test" || m.Runtime.Goroutines == 0 {
		t.Errorf("metrics = %+v", m)
	}
	if m.Workers.Buildings != 2 {
		t.Errorf("Workers.Buildings = %d, want 2", m.Workers.Buildings)
	}
	if !m.MQTT.Enabled || !m.MQTT.Connected {
		t.Errorf("MQTT = %+v", m.MQTT)
	}
	if m.Database == nil || m.Database.Driver != "sqlite3" || m.Database.OpenConnections != 1 {
		t.Errorf("Database = %+v", m.Database)
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/health")
	requestID := w.Header().Get("X-Request-ID")
	if len(requestID) != 36 {
		t.Errorf("X-Request-ID = %q, want a UUID", requestID)
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.Config.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	})

	tests := []struct {
		origin   string
		wantACAO string
	}{
		{"http://localhost:5173", "http://localhost:5173"},
		{"http://evil.example", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/ble/detail", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		srv.buildRouter().ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
			t.Errorf("origin %s: ACAO = %q, want %q", tt.origin, got, tt.wantACAO)
		}
	}
}

func TestNotFound(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/nonexistent")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if e := decodeError(t, w); e.Code != ErrCodeNotFound {
		t.Errorf("code = %q", e.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodPost, "/api/ble/detail?ble_id=101")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

type recordingLookups struct {
	mu      sync.Mutex
	samples []influxdb.LookupSample
}

func (r *recordingLookups) WriteLookupMetric(s influxdb.LookupSample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

func TestLookupMetrics(t *testing.T) {
	rec := &recordingLookups{}
	srv := testServer(t, func(d *Deps) { d.Lookups = rec })

	do(t, srv, http.MethodGet, "/api/ble/by_pillars?pillar_ids=4")
	do(t, srv, http.MethodGet, "/api/worker/999")
	do(t, srv, http.MethodGet, "/api/health")

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if len(rec.samples) != 2 {
		t.Fatalf("recorded %d samples, want 2 (health is not a lookup)", len(rec.samples))
	}
	if rec.samples[0].Route != "/api/ble/by_pillars" || rec.samples[0].Status != http.StatusOK {
		t.Errorf("sample[0] = %+v", rec.samples[0])
	}
	if rec.samples[1].Route != "/api/worker/{bldg_id}" || rec.samples[1].Status != http.StatusNotFound {
		t.Errorf("sample[1] = %+v", rec.samples[1])
	}
}

func TestRecovery(t *testing.T) {
	srv := testServer(t)

	handler := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ble/detail", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestStart_AppliesTimeouts(t *testing.T) {
	srv := testServer(t)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Close() }) //nolint:errcheck // Test cleanup

	assert.Equal(t, 5*time.Second, srv.server.ReadTimeout)
	assert.Equal(t, 5*time.Second, srv.server.ReadHeaderTimeout)
	assert.Equal(t, 5*time.Second, srv.server.WriteTimeout)
	assert.Equal(t, 5*time.Second, srv.server.IdleTimeout)
}
