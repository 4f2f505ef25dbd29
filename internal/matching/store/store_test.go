package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/database"
	"github.com/MrJamesThe3rd/fintrack/internal/ledger"
	"github.com/MrJamesThe3rd/fintrack/internal/matching/store"
)

func TestStore_FindMatch(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "rules.db")
	require.NoError(t, database.Migrate(database.SQLite, dsn))

	db, err := database.New(database.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := store.New(db, database.SQLite)
	ctx := context.Background()

	require.NoError(t, s.CreateRule(ctx, "uber", ledger.CategoryTransport))
	require.NoError(t, s.CreateRule(ctx, "uber eats", ledger.CategoryFood))
	require.NoError(t, s.CreateRule(ctx, "pharmacy", ledger.CategoryOther))
	require.NoError(t, s.CreateRule(ctx, "PHARMACY", ledger.CategoryHealth))

	type testCase struct {
		name string
		raw  string
		want ledger.Category
	}

	tests := []testCase{
		{name: "longest pattern wins", raw: "COMPRA UBER EATS LISBOA", want: ledger.CategoryFood},
		{name: "shorter pattern", raw: "UBER *TRIP", want: ledger.CategoryTransport},
		{name: "latest rule wins on equal length", raw: "Pharmacy Central", want: ledger.CategoryHealth},
		{name: "no match", raw: "SUPERMARKET", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatch(ctx, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
