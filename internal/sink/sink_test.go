package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"legalaid-seeder/internal/common/database"
	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/common/logger"
	"legalaid-seeder/internal/common/supabase"
	"legalaid-seeder/internal/generator/builder"
	"legalaid-seeder/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(t *testing.T, name string) models.TableSpec {
	t.Helper()
	spec, ok := models.LookupTable(name)
	require.True(t, ok, name)
	return spec
}

func TestPostgres_InsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	rows := []interface{}{
		models.CaseLanguage{ListingID: "c1", IsoCode: "spa"},
		models.CaseLanguage{ListingID: "c1", IsoCode: "fra"},
	}
	payload, _ := json.Marshal(rows)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "cases_languages" ("listing_id", "iso_code") SELECT "listing_id", "iso_code" FROM json_populate_recordset(NULL::"cases_languages", $1)`).
		WithArgs(string(payload)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	sink := NewPostgres(database.NewPostgresFromDB(db))
	require.NoError(t, sink.Insert(context.Background(), table(t, models.TableCaseLanguages), rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "profiles_roles"`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New(`violates foreign key constraint "profiles_roles_user_id_fkey"`))
	mock.ExpectRollback()

	sink := NewPostgres(database.NewPostgresFromDB(db))
	err = sink.Insert(context.Background(), table(t, models.TableProfileRoles),
		[]interface{}{models.ProfileRole{UserID: "missing", Role: models.RoleAttorney}})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDatabaseInsert))
	assert.Contains(t, err.Error(), "foreign key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertEmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sink := NewPostgres(database.NewPostgresFromDB(db))
	require.NoError(t, sink.Insert(context.Background(), table(t, models.TableCases), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteAll(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM "interests"`).WillReturnResult(sqlmock.NewResult(0, 12))

	sink := NewPostgres(database.NewPostgresFromDB(db))
	require.NoError(t, sink.DeleteAll(context.Background(), table(t, models.TableInterests)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Select(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COALESCE(json_agg(t), '[]'::json) FROM "test_users" t`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).
			AddRow([]byte(`[{"id":"u1","first_name":"Ana","last_name":"Ruiz","email":"ana@x.org"}]`)))

	var users []models.UserData
	sink := NewPostgres(database.NewPostgresFromDB(db))
	require.NoError(t, sink.Select(context.Background(), models.TestUsersTable, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].FirstName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgREST_InsertPinsColumns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/cases", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("columns"), "legal_server_id")
		body, _ := io.ReadAll(r.Body)
		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Len(t, got, 1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sink := NewPostgREST(supabase.NewRESTClient(server.URL, "key", 5*time.Second))
	err := sink.Insert(context.Background(), table(t, models.TableCases),
		[]interface{}{&models.CaseListing{ID: "c1", LegalServerID: 12}})
	require.NoError(t, err)

	require.NoError(t, sink.Insert(context.Background(), table(t, models.TableCases), nil))
}

type call struct {
	op    string
	table string
	rows  int
}

type recordingSink struct {
	mu     sync.Mutex
	calls  []call
	failOn string
}

func (s *recordingSink) record(c call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	if c.table == s.failOn {
		return apperrors.NewBackendRequestError(c.op+" "+c.table, http.StatusConflict, "conflict")
	}
	return nil
}

func (s *recordingSink) Insert(_ context.Context, t models.TableSpec, rows []interface{}) error {
	return s.record(call{op: "insert", table: t.Name, rows: len(rows)})
}

func (s *recordingSink) DeleteAll(_ context.Context, t models.TableSpec) error {
	return s.record(call{op: "delete", table: t.Name})
}

func (s *recordingSink) Select(context.Context, models.TableSpec, interface{}) error { return nil }

func testTables(counts map[string]int) []builder.TableRows {
	var out []builder.TableRows
	for _, spec := range models.GeneratedTables {
		rows := make([]interface{}, counts[spec.Name])
		out = append(out, builder.TableRows{TableSpec: spec, Rows: rows})
	}
	return out
}

func TestPusher_ParentsBeforeChildrenInBatches(t *testing.T) {
	rec := &recordingSink{}
	pusher := NewPusher(rec, 4, logger.NewTestLogger(t))

	err := pusher.Push(context.Background(), testTables(map[string]int{
		models.TableCases:         10,
		models.TableProfiles:      3,
		models.TableCaseLanguages: 9,
		models.TableInterests:     5,
	}))
	require.NoError(t, err)

	parents := map[string]bool{}
	for _, spec := range models.GeneratedTables {
		parents[spec.Name] = spec.Parent
	}

	rowsByTable := map[string]int{}
	seenChild := false
	for _, c := range rec.calls {
		assert.Equal(t, "insert", c.op)
		assert.LessOrEqual(t, c.rows, 4)
		rowsByTable[c.table] += c.rows
		if parents[c.table] {
			assert.False(t, seenChild, "parent %s written after a child", c.table)
		} else {
			seenChild = true
		}
	}
	assert.Equal(t, 10, rowsByTable[models.TableCases])
	assert.Equal(t, 9, rowsByTable[models.TableCaseLanguages])
	assert.Equal(t, 5, rowsByTable[models.TableInterests])
	assert.NotContains(t, rowsByTable, models.TableTranslationRequests)
}

func TestPusher_ParentFailureStopsPush(t *testing.T) {
	rec := &recordingSink{failOn: models.TableCases}
	pusher := NewPusher(rec, 0, logger.NewTestLogger(t))

	err := pusher.Push(context.Background(), testTables(map[string]int{
		models.TableCases:         2,
		models.TableCaseLanguages: 2,
	}))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBackendRequest))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, models.TableCases, rec.calls[0].table)
}

func TestPusher_PurgeChildrenFirst(t *testing.T) {
	rec := &recordingSink{}
	pusher := NewPusher(rec, 0, logger.NewTestLogger(t))

	require.NoError(t, pusher.Purge(context.Background(), models.GeneratedTables))
	require.Len(t, rec.calls, len(models.GeneratedTables))

	var parentOrder []string
	seenParent := false
	for _, c := range rec.calls {
		spec := table(t, c.table)
		if spec.Parent {
			seenParent = true
			parentOrder = append(parentOrder, c.table)
		} else {
			assert.False(t, seenParent, "child %s purged after a parent", c.table)
		}
	}
	assert.Equal(t, []string{
		models.TableProfiles,
		models.TableTranslationRequests,
		models.TableLimitedAssistances,
		models.TableCases,
	}, parentOrder)
}

func TestPusher_PurgeChildFailureKeepsParents(t *testing.T) {
	rec := &recordingSink{failOn: models.TableInterests}
	pusher := NewPusher(rec, 0, logger.NewTestLogger(t))

	err := pusher.Purge(context.Background(), models.GeneratedTables)
	require.Error(t, err)
	for _, c := range rec.calls {
		assert.False(t, table(t, c.table).Parent)
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	users := []interface{}{
		models.UserData{ID: "u1", FirstName: "Ana"},
		models.UserData{ID: "u2", FirstName: "Bo"},
	}
	require.NoError(t, mem.Insert(ctx, models.TestUsersTable, users))
	assert.Equal(t, 2, mem.Count(models.TableTestUsers))

	var got []models.UserData
	require.NoError(t, mem.Select(ctx, models.TestUsersTable, &got))
	assert.Equal(t, []models.UserData{{ID: "u1", FirstName: "Ana"}, {ID: "u2", FirstName: "Bo"}}, got)

	require.NoError(t, mem.DeleteAll(ctx, models.TestUsersTable))
	got = nil
	require.NoError(t, mem.Select(ctx, models.TestUsersTable, &got))
	assert.Empty(t, got)
}
