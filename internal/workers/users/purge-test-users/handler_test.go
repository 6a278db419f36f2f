package purgetestusers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/supabase"
	"legalaid-seeder/internal/models"
	"legalaid-seeder/internal/sink"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServer fakes the admin users endpoint. Ids in missing answer 404,
// ids in broken answer 500.
type authServer struct {
	mu      sync.Mutex
	deleted []string
	missing map[string]bool
	broken  map[string]bool
	auth    []string
}

func (a *authServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/auth/v1/admin/users/")
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auth = append(a.auth, r.Header.Get("Authorization"))

	switch {
	case r.Method != http.MethodDelete:
		w.WriteHeader(http.StatusMethodNotAllowed)
	case a.broken[id]:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"msg":"database error"}`))
	case a.missing[id]:
		w.WriteHeader(http.StatusNotFound)
	default:
		a.deleted = append(a.deleted, id)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}
}

func createTestHandler(t *testing.T, srv *authServer, s sink.Sink) *Handler {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: true, Timeout: 5 * time.Second, Concurrency: 2},
		Admin:        supabase.NewAdminClient(ts.URL, "service-role", 2*time.Second),
		Sinks:        sink.Static(s),
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func seedUsers(t *testing.T, mem *sink.Memory, ids ...string) {
	t.Helper()
	rows := make([]interface{}, len(ids))
	for i, id := range ids {
		rows[i] = models.UserData{ID: id, FirstName: "Test", LastName: "User", Email: id + "@example.org"}
	}
	require.NoError(t, mem.Insert(context.Background(), models.TestUsersTable, rows))
}

func TestHandler_Execute_DeletesAuthUsersAndRows(t *testing.T) {
	srv := &authServer{missing: map[string]bool{"u3": true}}
	mem := sink.NewMemory()
	seedUsers(t, mem, "u1", "u2", "u3")
	h := createTestHandler(t, srv, mem)

	output, err := h.Execute(context.Background(), &Input{Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, output.Deleted)

	sort.Strings(srv.deleted)
	assert.Equal(t, []string{"u1", "u2"}, srv.deleted, "already gone users are tolerated")
	assert.Zero(t, mem.Count(models.TableTestUsers))
	for _, header := range srv.auth {
		assert.Equal(t, "Bearer service-role", header)
	}
}

func TestHandler_Execute_NoUsers(t *testing.T) {
	srv := &authServer{}
	h := createTestHandler(t, srv, sink.NewMemory())

	output, err := h.Execute(context.Background(), &Input{Confirm: true})
	require.NoError(t, err)
	assert.Empty(t, output.Deleted)
	assert.Empty(t, srv.auth)
}

func TestHandler_Execute_KeepsRowsWhenAuthDeleteFails(t *testing.T) {
	srv := &authServer{broken: map[string]bool{"u2": true}}
	mem := sink.NewMemory()
	seedUsers(t, mem, "u1", "u2")
	h := createTestHandler(t, srv, mem)

	_, err := h.Execute(context.Background(), &Input{Confirm: true})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBackendRequest))
	assert.True(t, apperrors.AsStandardError(err).Retryable)
	assert.Equal(t, 2, mem.Count(models.TableTestUsers))
}

func TestHandler_Execute_RequiresConfirmation(t *testing.T) {
	srv := &authServer{}
	mem := sink.NewMemory()
	seedUsers(t, mem, "u1")
	h := createTestHandler(t, srv, mem)

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfirmationRequired))
	assert.Equal(t, 1, mem.Count(models.TableTestUsers))
	assert.Empty(t, srv.auth)
}

func TestHandler_ServeHTTP(t *testing.T) {
	mem := sink.NewMemory()
	seedUsers(t, mem, "u1")
	h := createTestHandler(t, &authServer{}, mem)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/functions/purge_test_users", strings.NewReader(`{"confirm": true}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":["u1"]`)
}
