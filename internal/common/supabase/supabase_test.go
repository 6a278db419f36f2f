package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "legalaid-seeder/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func TestRESTClient_Insert(t *testing.T) {
	var got []row
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/cases", r.URL.Path)
		assert.Equal(t, "id,name", r.URL.Query().Get("columns"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "anon-key", 5*time.Second)
	err := client.Insert(context.Background(), "cases", []string{"id", "name"}, []row{{ID: "1", Name: "a"}, {ID: "2"}})
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: "1", Name: "a"}, {ID: "2"}}, got)
}

func TestRESTClient_ForwardsAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer caller-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "anon-key", 5*time.Second).WithAuthorization("Bearer caller-jwt")
	require.NoError(t, client.DeleteAll(context.Background(), "cases", "id"))
}

func TestRESTClient_DeleteAllMatchesEveryRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/rest/v1/profiles_roles", r.URL.Path)
		assert.Equal(t, "not.is.null", r.URL.Query().Get("user_id"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewRESTClient(server.URL, "key", 5*time.Second)
	require.NoError(t, client.DeleteAll(context.Background(), "profiles_roles", "user_id"))
}

func TestRESTClient_Select(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"u1","name":"Ana"},{"id":"u2"}]`))
	}))
	defer server.Close()

	var rows []row
	client := NewRESTClient(server.URL, "key", 5*time.Second)
	require.NoError(t, client.Select(context.Background(), "test_users", &rows))
	assert.Equal(t, []row{{ID: "u1", Name: "Ana"}, {ID: "u2"}}, rows)
}

func TestRESTClient_ErrorStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"constraint violation", http.StatusConflict, false},
		{"server error", http.StatusServiceUnavailable, true},
		{"rate limited", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			client := NewRESTClient(server.URL, "key", 5*time.Second)
			err := client.Insert(context.Background(), "cases", nil, []row{{ID: "1"}})
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrBackendRequest))

			stdErr := apperrors.AsStandardError(err)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
			assert.Contains(t, stdErr.Details, "nope")
		})
	}
}

func TestRESTClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewRESTClient(url, "key", time.Second).DeleteAll(context.Background(), "cases", "id")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBackendRequest))
	assert.True(t, apperrors.AsStandardError(err).Retryable)
}

func TestAdminClient_CreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		var req CreateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ana@example.org", req.Email)
		assert.Equal(t, true, req.UserMetadata["fake"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"5f7c","email":"ana@example.org","user_metadata":{"fake":true}}`))
	}))
	defer server.Close()

	admin := NewAdminClient(server.URL, "service-key", 5*time.Second)
	user, err := admin.CreateUser(context.Background(), &CreateUserRequest{
		Email:        "ana@example.org",
		Password:     "pw",
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"fake": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "5f7c", user.ID)
}

func TestAdminClient_CreateUserRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"msg":"email exists"}`))
	}))
	defer server.Close()

	admin := NewAdminClient(server.URL, "service-key", 5*time.Second)
	_, err := admin.CreateUser(context.Background(), &CreateUserRequest{Email: "dup@example.org"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUserProvisioning))
	assert.Contains(t, err.Error(), "dup@example.org")
}

func TestAdminClient_DeleteUser(t *testing.T) {
	statuses := map[string]int{"u1": http.StatusOK, "gone": http.StatusNotFound, "bad": http.StatusInternalServerError}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		id := r.URL.Path[len("/auth/v1/admin/users/"):]
		w.WriteHeader(statuses[id])
	}))
	defer server.Close()

	admin := NewAdminClient(server.URL, "service-key", 5*time.Second)
	assert.NoError(t, admin.DeleteUser(context.Background(), "u1"))
	assert.NoError(t, admin.DeleteUser(context.Background(), "gone"))
	assert.True(t, apperrors.Is(admin.DeleteUser(context.Background(), "bad"), apperrors.ErrBackendRequest))
}
