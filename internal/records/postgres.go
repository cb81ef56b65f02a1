package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const queryTimeout = 3 * time.Second

// PostgresStore keeps every remote table in one jsonb-backed records table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema creates the records table used by PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
	id          SERIAL PRIMARY KEY,
	table_name  TEXT        NOT NULL,
	fields      JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_on  TIMESTAMPTZ NOT NULL DEFAULT now(),
	modified_on TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS records_table_name_idx ON records (table_name);
`

func (s *PostgresStore) FetchRecords(ctx context.Context, table string, q Query) ([]Record, error) {
	where, args := whereClause(table, q)
	query := `SELECT id, fields, created_on, modified_on FROM records ` + where + ` ORDER BY id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, backendError("fetch %s: %v", table, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, backendError("scan %s: %v", table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError("fetch %s: %v", table, err)
	}
	return out, nil
}

func (s *PostgresStore) GetRecordByID(ctx context.Context, table string, id int) (Record, error) {
	query := `SELECT id, fields, created_on, modified_on FROM records WHERE table_name = $1 AND id = $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, table, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, backendError("get %s %d: %v", table, id, err)
	}
	return r, nil
}

func (s *PostgresStore) CreateRecord(ctx context.Context, table string, fields Record) (Record, error) {
	data, err := marshalFields(fields)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO records (table_name, fields) VALUES ($1, $2::jsonb)
		RETURNING id, fields, created_on, modified_on`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, table, data))
	if err != nil {
		return nil, backendError("create %s: %v", table, err)
	}
	return r, nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, table string, id int, fields Record) (Record, error) {
	data, err := marshalFields(fields)
	if err != nil {
		return nil, err
	}
	query := `UPDATE records SET fields = fields || $1::jsonb, modified_on = now()
		WHERE table_name = $2 AND id = $3
		RETURNING id, fields, created_on, modified_on`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, data, table, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, backendError("update %s %d: %v", table, id, err)
	}
	return r, nil
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, table string, id int) error {
	query := `DELETE FROM records WHERE table_name = $1 AND id = $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, table, id)
	if err != nil {
		return backendError("delete %s %d: %v", table, id, err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var id int
	var raw []byte
	var createdOn, modifiedOn time.Time
	if err := row.Scan(&id, &raw, &createdOn, &modifiedOn); err != nil {
		return nil, err
	}

	r := Record{}
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	r[IDField] = id
	r["CreatedOn"] = createdOn.UTC().Format(time.RFC3339)
	r["ModifiedOn"] = modifiedOn.UTC().Format(time.RFC3339)
	return r, nil
}

func marshalFields(fields Record) ([]byte, error) {
	clean := fields.Clone()
	delete(clean, IDField)
	delete(clean, "CreatedOn")
	delete(clean, "ModifiedOn")
	data, err := json.Marshal(clean)
	if err != nil {
		return nil, backendError("encode fields: %v", err)
	}
	return data, nil
}

// whereClause builds the WHERE clause for a fetch. Field names are bound as
// parameters so no caller-provided text reaches the SQL string.
func whereClause(table string, q Query) (string, []any) {
	args := []any{table}
	conditions := []string{"table_name = $1"}
	argIdx := 2

	for _, c := range q.Where {
		switch c.Operator {
		case OpExactMatch:
			conditions = append(conditions, fmt.Sprintf("fields->>($%d::text) = $%d::text", argIdx, argIdx+1))
			args = append(args, c.FieldName, fmt.Sprint(c.Value))
			argIdx += 2
		case OpLessThanOrEqualTo:
			if c.ValueField != "" {
				conditions = append(conditions, fmt.Sprintf("(fields->>($%d::text))::numeric <= (fields->>($%d::text))::numeric", argIdx, argIdx+1))
				args = append(args, c.FieldName, c.ValueField)
			} else {
				conditions = append(conditions, fmt.Sprintf("(fields->>($%d::text))::numeric <= $%d::numeric", argIdx, argIdx+1))
				args = append(args, c.FieldName, c.Value)
			}
			argIdx += 2
		}
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
