package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/scheduling-api/internal/adapters/httpapi"
	memappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/memory/appointmentrepo"
	memclock "github.com/clinicflow/scheduling-api/internal/adapters/memory/clock"
	memevents "github.com/clinicflow/scheduling-api/internal/adapters/memory/events"
	memidempotency "github.com/clinicflow/scheduling-api/internal/adapters/memory/idempotency"
	pgappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/postgres/appointmentrepo"
	pgidempotency "github.com/clinicflow/scheduling-api/internal/adapters/postgres/idempotency"
	postgres_testutil "github.com/clinicflow/scheduling-api/internal/adapters/postgres/testutil"
	sqliteappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/sqlite/appointmentrepo"
	sqliteidempotency "github.com/clinicflow/scheduling-api/internal/adapters/sqlite/idempotency"
	sqlite_testutil "github.com/clinicflow/scheduling-api/internal/adapters/sqlite/testutil"
	"github.com/clinicflow/scheduling-api/internal/app/appointments"
	"github.com/clinicflow/scheduling-api/internal/app/dashboard"
	appointmentrepoport "github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
	idempotencyport "github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "sqlite":
		return []backend{backendSQLite}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendSQLite, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|sqlite|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	events  *memevents.Recorder
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var (
		repo      appointmentrepoport.Repository
		idemStore idempotencyport.Store
	)
	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		repo = pgappointmentrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendSQLite:
		db := sqlite_testutil.OpenMigratedDB(t)
		repo = sqliteappointmentrepo.NewRepo(db)
		idemStore = sqliteidempotency.NewStore(db)
	case backendMemory:
		repo = memappointmentrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	rec := memevents.NewRecorder()
	apptSvc := appointments.NewService(repo, idemStore, clk, rec)
	api := httpapi.NewServer(apptSvc, dashboard.NewService(repo), clk)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{RequestTimeout: 5 * time.Second})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		events:  rec,
	}
}

// uniqueDoctor keeps runs against a shared database from colliding.
func uniqueDoctor() string {
	return "Dr. " + uuid.NewString()[:8]
}

func urlEncode(v string) string { return url.QueryEscape(v) }

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, idemKey string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) errorResponse {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	return got
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
