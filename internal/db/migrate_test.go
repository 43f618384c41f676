package db

import (
	"testing"
)

func TestMigrateSQLiteCreatesMarketplaceTables(t *testing.T) {
	conn, errOpen := Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{
		"users", "points", "merchants", "consumers", "categories",
		"donations", "offers", "orders", "transactions", "reviews",
		"notifications", "settings",
	} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestMigrateSQLitePointColumns(t *testing.T) {
	conn, errOpen := Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, column := range []string{"user_id", "balance", "last_updated"} {
		if !conn.Migrator().HasColumn("points", column) {
			t.Fatalf("points missing column %s", column)
		}
	}
}
