package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (ledger.Category, error)
	CreateRule(ctx context.Context, rawPattern string, category ledger.Category) error
}

// Service learns which category a bank statement description belongs to.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the longest learned pattern contained in
// rawDescription, or an empty category if none matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (ledger.Category, error) {
	raw := strings.TrimSpace(rawDescription)
	if raw == "" {
		return "", nil
	}

	return s.repo.FindMatch(ctx, raw)
}

// Learn remembers that descriptions containing rawPattern belong to category.
func (s *Service) Learn(ctx context.Context, rawPattern string, category ledger.Category) error {
	pattern := strings.TrimSpace(rawPattern)

	var violations []string

	if pattern == "" {
		violations = append(violations, "Pattern is required")
	}

	if !category.Valid() {
		violations = append(violations, "Category is not recognised")
	}

	if len(violations) > 0 {
		return &ledger.ValidationError{Violations: violations}
	}

	if err := s.repo.CreateRule(ctx, pattern, category); err != nil {
		return fmt.Errorf("saving category rule: %w", err)
	}

	return nil
}
