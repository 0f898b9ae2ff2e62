package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mailroom-simulator/internal/platform/db"

	"github.com/stretchr/testify/require"
)

func TestSeedAndListMailItems(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	conn, err := db.OpenSQLite(filepath.Join(dir, "mail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(ctx, conn))
	// Running twice must be harmless.
	require.NoError(t, InitSchema(ctx, conn))

	seed := `[
		{"item_id": "M2", "arrival_time": 3, "dest_floor": 7, "weight": 2500, "fragile": false, "priority_level": 100},
		{"item_id": "M1", "arrival_time": 1, "dest_floor": 4, "weight": 300, "fragile": true},
		{"item_id": "M3", "arrival_time": 3, "dest_floor": 2, "weight": 800}
	]`
	seedPath := filepath.Join(dir, "mail.json")
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o644))
	require.NoError(t, SeedFromJSON(ctx, conn, db.SQLite, seedPath))

	repo := NewMailRepository(conn)
	items, err := repo.ListMailItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "M1", items[0].ID)
	require.True(t, items[0].Fragile)
	require.False(t, items[0].IsPriority())

	require.Equal(t, "M2", items[1].ID)
	require.True(t, items[1].IsPriority())
	require.Equal(t, 100, items[1].PriorityLevel)
	require.Equal(t, 2500, items[1].Weight)

	require.Equal(t, "M3", items[2].ID)
	require.False(t, items[2].IsPriority())
}

func TestSeedMailReplacesExisting(t *testing.T) {
	ctx := context.Background()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "mail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(ctx, conn))

	require.NoError(t, SeedMail(ctx, conn, db.SQLite, []MailSeed{{ItemID: "M1", ArrivalTime: 1, DestFloor: 3, Weight: 100}}))
	require.NoError(t, SeedMail(ctx, conn, db.SQLite, []MailSeed{{ItemID: "M1", ArrivalTime: 5, DestFloor: 9, Weight: 200}}))

	items, err := NewMailRepository(conn).ListMailItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].ArrivalTime)
	require.Equal(t, 9, items[0].DestFloor)
}

func TestSeedMailRejectsEmptyID(t *testing.T) {
	ctx := context.Background()

	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "mail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(ctx, conn))

	err = SeedMail(ctx, conn, db.SQLite, []MailSeed{{ItemID: "  ", ArrivalTime: 1, DestFloor: 3}})
	require.Error(t, err)
}
