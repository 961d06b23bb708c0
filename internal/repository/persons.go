package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/formhelper/formhelper/internal/common"
	"github.com/formhelper/formhelper/internal/entity"
)

type PersonRepository interface {
	Create(ctx context.Context, name string) (*entity.Person, error)
	GetByID(ctx context.Context, id int64) (*entity.Person, error)
	List(ctx context.Context) ([]*entity.Person, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type personRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewPersonRepository(db *DB, logger *slog.Logger) PersonRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &personRepo{db: db, logger: logger}
}

func (r *personRepo) Create(ctx context.Context, name string) (*entity.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	id, err := r.db.insertReturningID(ctx,
		`INSERT INTO persons (name) VALUES (?)`, name)
	if err != nil {
		r.logger.Error("failed to create person", "name", name, "error", err)
		return nil, &common.StoreError{Op: "insert person", Cause: err}
	}
	return r.getByID(ctx, id)
}

func (r *personRepo) GetByID(ctx context.Context, id int64) (*entity.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.getByID(ctx, id)
}

func (r *personRepo) getByID(ctx context.Context, id int64) (*entity.Person, error) {
	row := r.db.sql.QueryRowContext(ctx, r.db.rebind(
		`SELECT id, name, created_at, updated_at FROM persons WHERE id = ?`), id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get person", "person_id", id, "error", err)
		return nil, &common.StoreError{Op: "select person", Cause: err}
	}
	return p, nil
}

func (r *personRepo) List(ctx context.Context) ([]*entity.Person, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM persons ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.logger.Error("failed to list persons", "error", err)
		return nil, &common.StoreError{Op: "select persons", Cause: err}
	}
	defer rows.Close()

	var persons []*entity.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, &common.StoreError{Op: "scan person", Cause: err}
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &common.StoreError{Op: "select persons", Cause: err}
	}
	return persons, nil
}

func (r *personRepo) Update(ctx context.Context, id int64, name string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(
		`UPDATE persons SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`), name, id)
	if err != nil {
		r.logger.Error("failed to update person", "person_id", id, "error", err)
		return &common.StoreError{Op: "update person", Cause: err}
	}
	return nil
}

// Delete removes the person row only. Files and table records that point at
// it keep their person_id; there is no cascade.
func (r *personRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	_, err := r.db.sql.ExecContext(ctx, r.db.rebind(
		`DELETE FROM persons WHERE id = ?`), id)
	if err != nil {
		r.logger.Error("failed to delete person", "person_id", id, "error", err)
		return &common.StoreError{Op: "delete person", Cause: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*entity.Person, error) {
	var p entity.Person
	var created, updated any
	if err := row.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &p, nil
}
