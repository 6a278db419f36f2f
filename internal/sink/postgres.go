package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"legalaid-seeder/internal/common/database"
	apperrors "legalaid-seeder/internal/common/errors"
	"legalaid-seeder/internal/models"

	"github.com/lib/pq"
)

// Postgres writes straight to the backing database. Each insert sends the
// whole batch as one JSON parameter expanded by json_populate_recordset.
type Postgres struct {
	db *database.PostgresClient
}

func NewPostgres(db *database.PostgresClient) *Postgres {
	return &Postgres{db: db}
}

func insertQuery(table models.TableSpec) string {
	cols := table.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	list := strings.Join(quoted, ", ")
	name := pq.QuoteIdentifier(table.Name)

	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM json_populate_recordset(NULL::%s, $1)",
		name, list, list, name)
}

func (p *Postgres) Insert(ctx context.Context, table models.TableSpec, rows []interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(table.Name, err)
	}

	err = p.db.InTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insertQuery(table), string(payload))
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n != int64(len(rows)) {
			return fmt.Errorf("inserted %d of %d rows", n, len(rows))
		}
		return nil
	})
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(table.Name, err)
	}
	return nil
}

func (p *Postgres) DeleteAll(ctx context.Context, table models.TableSpec) error {
	if _, err := p.db.Exec(ctx, "DELETE FROM "+pq.QuoteIdentifier(table.Name)); err != nil {
		return apperrors.NewDatabaseDeleteFailedError(table.Name, err)
	}
	return nil
}

func (p *Postgres) Select(ctx context.Context, table models.TableSpec, dest interface{}) error {
	name := pq.QuoteIdentifier(table.Name)
	rows, err := p.db.Query(ctx, fmt.Sprintf("SELECT COALESCE(json_agg(t), '[]'::json) FROM %s t", name))
	if err != nil {
		return apperrors.NewQueryExecutionFailedError(table.Name, err)
	}
	defer rows.Close()

	var payload []byte
	if rows.Next() {
		if err := rows.Scan(&payload); err != nil {
			return apperrors.NewQueryExecutionFailedError(table.Name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewQueryExecutionFailedError(table.Name, err)
	}
	if len(payload) == 0 {
		payload = []byte("[]")
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return apperrors.NewQueryExecutionFailedError(table.Name, err)
	}
	return nil
}
