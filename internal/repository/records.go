package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/entity"
)

const recordColumns = `id, file_id, person_id, content, created_at`

type RecordRepository interface {
	Create(ctx context.Context, fileID int64, personID *int64, content string) (*entity.TableRecord, error)
	GetByID(ctx context.Context, id int64) (*entity.TableRecord, error)
	ListByFile(ctx context.Context, fileID int64) ([]*entity.TableRecord, error)
	ListByPerson(ctx context.Context, personID int64) ([]*entity.TableRecord, error)
	List(ctx context.Context) ([]*entity.TableRecord, error)
	Update(ctx context.Context, id int64, content string) error
	Delete(ctx context.Context, id int64) error
}

type recordRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepo{db: db, logger: logger}
}

// Create persists one encoded canonical table. personID is a snapshot of the
// owning file's person at this moment; it is never resynchronized.
func (r *recordRepo) Create(ctx context.Context, fileID int64, personID *int64, content string) (*entity.TableRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id, err := r.db.insertReturningID(ctx,
		`INSERT INTO table_records (file_id, person_id, content) VALUES (?, ?, ?)`,
		fileID, nullableID(personID), content)
	if err != nil {
		r.logger.Error("failed to create table record", "file_id", fileID, "error", err)
		return nil, &common.StoreError{Op: "insert table record", Cause: err}
	}
	return r.getByID(ctx, id)
}

func (r *recordRepo) GetByID(ctx context.Context, id int64) (*entity.TableRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.getByID(ctx, id)
}

func (r *recordRepo) getByID(ctx context.Context, id int64) (*entity.TableRecord, error) {
	row := r.db.sql.QueryRowContext(ctx, r.db.rebind(
		`SELECT `+recordColumns+` FROM table_records WHERE id = ?`), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get table record", "record_id", id, "error", err)
		return nil, &common.StoreError{Op: "select table record", Cause: err}
	}
	return rec, nil
}

func (r *recordRepo) ListByFile(ctx context.Context, fileID int64) ([]*entity.TableRecord, error) {
	return r.list(ctx, `WHERE file_id = ?`, fileID)
}

func (r *recordRepo) ListByPerson(ctx context.Context, personID int64) ([]*entity.TableRecord, error) {
	return r.list(ctx, `WHERE person_id = ?`, personID)
}

func (r *recordRepo) List(ctx context.Context) ([]*entity.TableRecord, error) {
	return r.list(ctx, ``)
}

func (r *recordRepo) list(ctx context.Context, where string, args ...any) ([]*entity.TableRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	// Most recent first; id breaks ties deterministically for rows created
	// within the same timestamp granule.
	query := `SELECT ` + recordColumns + ` FROM table_records `
	if where != "" {
		query += where + ` `
	}
	query += `ORDER BY created_at DESC, id ASC`

	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		r.logger.Error("failed to list table records", "error", err)
		return nil, &common.StoreError{Op: "select table records", Cause: err}
	}
	defer rows.Close()

	var records []*entity.TableRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &common.StoreError{Op: "scan table record", Cause: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.StoreError{Op: "select table records", Cause: err}
	}
	return records, nil
}

func (r *recordRepo) Update(ctx context.Context, id int64, content string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(
		`UPDATE table_records SET content = ? WHERE id = ?`), content, id)
	if err != nil {
		r.logger.Error("failed to update table record", "record_id", id, "error", err)
		return &common.StoreError{Op: "update table record", Cause: err}
	}
	return nil
}

func (r *recordRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(
		`DELETE FROM table_records WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("failed to delete table record", "record_id", id, "error", err)
		return &common.StoreError{Op: "delete table record", Cause: err}
	}
	return nil
}

func scanRecord(row rowScanner) (*entity.TableRecord, error) {
	var rec entity.TableRecord
	var personID sql.NullInt64
	var created any
	if err := row.Scan(&rec.ID, &rec.FileID, &personID, &rec.Content, &created); err != nil {
		return nil, err
	}
	if personID.Valid {
		rec.PersonID = &personID.Int64
	}
	var err error
	if rec.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	return &rec, nil
}
