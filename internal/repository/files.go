package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/entity"
)

type FileRepository interface {
	Create(ctx context.Context, personID *int64, fileName, filePath, fileType string) (*entity.FileRecord, error)
	GetByID(ctx context.Context, id int64) (*entity.FileRecord, error)
	List(ctx context.Context) ([]*entity.FileRecord, error)
	Delete(ctx context.Context, id int64) error
}

type fileRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewFileRepository(db *DB, logger *slog.Logger) FileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &fileRepo{db: db, logger: logger}
}

func (r *fileRepo) Create(ctx context.Context, personID *int64, fileName, filePath, fileType string) (*entity.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id, err := r.db.insertReturningID(ctx,
		`INSERT INTO files (person_id, file_name, file_path, file_type) VALUES (?, ?, ?, ?)`,
		nullableID(personID), fileName, filePath, fileType)
	if err != nil {
		r.logger.Error("failed to create file record",
			"file_name", fileName, "file_path", filePath, "error", err)
		return nil, &common.StoreError{Op: "insert file", Cause: err}
	}
	return r.getByID(ctx, id)
}

func (r *fileRepo) GetByID(ctx context.Context, id int64) (*entity.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.getByID(ctx, id)
}

func (r *fileRepo) getByID(ctx context.Context, id int64) (*entity.FileRecord, error) {
	row := r.db.sql.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, person_id, file_name, file_path, file_type, created_at FROM files WHERE id = ?`), id)
	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get file record", "file_id", id, "error", err)
		return nil, &common.StoreError{Op: "select file", Cause: err}
	}
	return f, nil
}

func (r *fileRepo) List(ctx context.Context) ([]*entity.FileRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, person_id, file_name, file_path, file_type, created_at
		 FROM files ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.logger.Error("failed to list file records", "error", err)
		return nil, &common.StoreError{Op: "select files", Cause: err}
	}
	defer rows.Close()

	var files []*entity.FileRecord
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, &common.StoreError{Op: "scan file", Cause: err}
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.StoreError{Op: "select files", Cause: err}
	}
	return files, nil
}

// Delete removes the file row only; its table records stay behind with
// their file_id intact.
func (r *fileRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(`DELETE FROM files WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("failed to delete file record", "file_id", id, "error", err)
		return &common.StoreError{Op: "delete file", Cause: err}
	}
	return nil
}

func scanFile(row rowScanner) (*entity.FileRecord, error) {
	var f entity.FileRecord
	var personID sql.NullInt64
	var created any
	if err := row.Scan(&f.ID, &personID, &f.FileName, &f.FilePath, &f.FileType, &created); err != nil {
		return nil, err
	}
	if personID.Valid {
		f.PersonID = &personID.Int64
	}
	var err error
	if f.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	return &f, nil
}

// nullableID maps an optional person id to its SQL value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
