// Package sqlite provides a single-file persistent implementation of
// the outbound repository ports, backed by modernc.org/sqlite (pure Go,
// no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/storegate/storegate/internal/domain/catalog"
	"github.com/storegate/storegate/internal/domain/user"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT    NOT NULL,
	password TEXT    NOT NULL,
	active   INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS categories (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	name   TEXT    NOT NULL,
	active INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	price       REAL    NOT NULL DEFAULT 0,
	stock       INTEGER NOT NULL DEFAULT 0,
	category_id INTEGER NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1
);
`

// Store bundles the repository implementations sharing one database.
type Store struct {
	db         *sql.DB
	Users      *UserStore
	Categories *CategoryStore
	Products   *ProductStore
}

// Open opens (creating if needed) the database at path, bootstraps the
// schema, and returns the store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{
		db:         db,
		Users:      &UserStore{db: db},
		Categories: &CategoryStore{db: db},
		Products:   &ProductStore{db: db},
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UserStore implements user.Repository on sqlite.
type UserStore struct {
	db *sql.DB
}

// Create stores a new active user and returns its assigned ID.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, active) VALUES (?, ?, 1)`,
		username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// GetByID returns the user, or (nil, nil) if absent.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, username, password, active FROM users WHERE id = ?`, id))
}

// GetByUsername returns the user, or (nil, nil) if absent.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, username, password, active FROM users WHERE username = ?`, username))
}

func (s *UserStore) scanOne(row *sql.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// List returns all users in ID order.
func (s *UserStore) List(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password, active FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Active); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// Update replaces username and password hash, returning the updated user.
func (s *UserStore) Update(ctx context.Context, id int64, username, passwordHash string) (*user.User, error) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, password = ? WHERE id = ?`,
		username, passwordHash, id); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the user.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CategoryStore implements catalog.CategoryRepository on sqlite.
type CategoryStore struct {
	db *sql.DB
}

// Create stores a new active category and returns its assigned ID.
func (s *CategoryStore) Create(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, active) VALUES (?, 1)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

// GetByID returns the category, or (nil, nil) if absent.
func (s *CategoryStore) GetByID(ctx context.Context, id int64) (*catalog.Category, error) {
	var c catalog.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, active FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}

// List returns all categories in ID order.
func (s *CategoryStore) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, active FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var result []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Update renames the category, returning the updated record.
func (s *CategoryStore) Update(ctx context.Context, id int64, name string) (*catalog.Category, error) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ?`, name, id); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the category.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// ProductStore implements catalog.ProductRepository on sqlite.
type ProductStore struct {
	db *sql.DB
}

// Create stores a new product and returns its assigned ID.
func (s *ProductStore) Create(ctx context.Context, p catalog.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, description, price, stock, category_id, active)
		 VALUES (?, ?, ?, ?, ?, 1)`,
		p.Name, p.Description, p.Price, p.Stock, p.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return res.LastInsertId()
}

// GetByID returns the product, or (nil, nil) if absent.
func (s *ProductStore) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var p catalog.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, stock, category_id, active
		 FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

// ListByCategory returns the products in a category, in ID order.
func (s *ProductStore) ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, stock, category_id, active
		 FROM products WHERE category_id = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	result := make([]catalog.Product, 0)
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.Active); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Compile-time interface verification.
var (
	_ user.Repository            = (*UserStore)(nil)
	_ catalog.CategoryRepository = (*CategoryStore)(nil)
	_ catalog.ProductRepository  = (*ProductStore)(nil)
)
