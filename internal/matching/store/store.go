package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/fintrack/internal/database"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// FindMatch prefers the longest pattern, then the most recently learned one.
func (s *Store) FindMatch(ctx context.Context, rawDescription string) (ledger.Category, error) {
	query := s.dialect.Rebind(`
		SELECT category
		FROM category_rules
		WHERE LOWER(?) LIKE '%' || LOWER(raw_pattern) || '%'
		ORDER BY LENGTH(raw_pattern) DESC, id DESC
		LIMIT 1
	`)

	var category string

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return ledger.Category(category), nil
}

func (s *Store) CreateRule(ctx context.Context, rawPattern string, category ledger.Category) error {
	query := s.dialect.Rebind(`
		INSERT INTO category_rules (raw_pattern, category, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`)

	_, err := s.db.ExecContext(ctx, query, rawPattern, string(category))
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}
