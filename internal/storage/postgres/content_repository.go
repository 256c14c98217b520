package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolcms/server/internal/domain/content"
)

var _ content.Repository = (*ContentRepository)(nil)

// ContentRepository implements CRUD for one collection, with the SQL derived
// from the collection's descriptor. Ids come from an identity column, so
// uniqueness and monotonicity hold without application-level locking.
type ContentRepository struct {
	pool *pgxpool.Pool
	desc content.Descriptor
}

// pgErrStringTooLong is SQLSTATE 22001 (string_data_right_truncation),
// raised when a value exceeds a varchar column limit.
const pgErrStringTooLong = "22001"

func (r *ContentRepository) List(ctx context.Context) ([]content.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY id DESC`,
		r.selectColumns(), r.desc.Table,
	)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.desc.Table, err)
	}
	defer rows.Close()

	var records []content.Record
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", r.desc.Table, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.desc.Table, err)
	}
	return records, nil
}

func (r *ContentRepository) Get(ctx context.Context, id int64) (content.Record, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE id = $1`,
		r.selectColumns(), r.desc.Table,
	)
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.desc.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get %s: %w", r.desc.Table, err)
		}
		return nil, content.ErrNotFound
	}
	record, err := r.scanRecord(rows)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.desc.Table, err)
	}
	return record, nil
}

func (r *ContentRepository) Create(ctx context.Context, values map[string]any) (content.Record, error) {
	columns := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, field := range r.desc.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		args = append(args, value)
		columns = append(columns, field.Column)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.desc.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
		r.selectColumns(),
	)
	if len(columns) == 0 {
		query = fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES RETURNING %s`, r.desc.Table, r.selectColumns())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError("create", r.desc.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapWriteError("create", r.desc.Table, err)
		}
		return nil, fmt.Errorf("create %s: no row returned", r.desc.Table)
	}
	record, err := r.scanRecord(rows)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.desc.Table, err)
	}
	return record, nil
}

func (r *ContentRepository) Update(ctx context.Context, id int64, values map[string]any) (content.Record, error) {
	assignments := make([]string, 0, len(values))
	args := make([]any, 0, len(values)+1)
	for _, field := range r.desc.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", field.Column, len(args)))
	}

	// An empty patch is a no-op merge; return the stored record.
	if len(assignments) == 0 {
		return r.Get(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		r.desc.Table, strings.Join(assignments, ", "), len(args), r.selectColumns(),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError("update", r.desc.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapWriteError("update", r.desc.Table, err)
		}
		return nil, content.ErrNotFound
	}
	record, err := r.scanRecord(rows)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.desc.Table, err)
	}
	return record, nil
}

func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.desc.Table)
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.desc.Table, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) selectColumns() string {
	columns := make([]string, 0, len(r.desc.Fields)+2)
	columns = append(columns, "id", "created_at")
	for _, field := range r.desc.Fields {
		columns = append(columns, field.Column)
	}
	return strings.Join(columns, ", ")
}

func (r *ContentRepository) scanRecord(rows pgx.Rows) (content.Record, error) {
	var (
		id        int64
		createdAt time.Time
	)
	targets := make([]any, 0, len(r.desc.Fields)+2)
	targets = append(targets, &id, &createdAt)

	fieldValues := make([]any, len(r.desc.Fields))
	for i, field := range r.desc.Fields {
		if field.Type == content.FieldTimestamp {
			fieldValues[i] = new(time.Time)
		} else {
			fieldValues[i] = new(string)
		}
		targets = append(targets, fieldValues[i])
	}

	if err := rows.Scan(targets...); err != nil {
		return nil, err
	}

	record := content.Record{
		"id":        id,
		"createdAt": createdAt,
	}
	for i, field := range r.desc.Fields {
		switch value := fieldValues[i].(type) {
		case *time.Time:
			record[field.Name] = *value
		case *string:
			record[field.Name] = *value
		}
	}
	return record, nil
}

// mapWriteError turns storage constraint violations into validation errors so
// they surface as 400s instead of leaking as 500s.
func mapWriteError(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrStringTooLong {
		return content.ValidationError{Message: "field value exceeds maximum length"}
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
