package shared

import (
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("splitMigrationName", func(t *testing.T) {
		tc := []struct {
			file      string
			version   int
			name      string
			direction string
			ok        bool
		}{
			{"0000_create_catalog_up.sql", 0, "create_catalog", "up", true},
			{"0001_create_liked_songs_down.sql", 1, "create_liked_songs", "down", true},
			{"0001_create_liked_songs.sql", 0, "", "", false},
			{"abcd_create_up.sql", 0, "", "", false},
			{"README.md", 0, "", "", false},
		}

		for _, tt := range tc {
			t.Run(tt.file, func(t *testing.T) {
				version, name, direction, ok := splitMigrationName(tt.file)
				if ok != tt.ok || version != tt.version || name != tt.name || direction != tt.direction {
					t.Errorf("splitMigrationName(%q) = (%d, %q, %q, %v)", tt.file, version, name, direction, ok)
				}
			})
		}
	})

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) < 2 {
			t.Fatalf("expected at least two migrations, got %d", len(migrations))
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"songs", "suno_songs", "liked_songs"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		before, err := AppliedVersions(db)
		if err != nil {
			t.Fatalf("failed to list versions: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		after, err := AppliedVersions(db)
		if err != nil {
			t.Fatalf("failed to list versions after rollback: %v", err)
		}
		if len(after) != len(before)-1 {
			t.Errorf("expected one fewer applied migration, got %v (was %v)", after, before)
		}

		if _, err := db.Exec("SELECT 1 FROM liked_songs LIMIT 1"); err == nil {
			t.Error("liked_songs should be gone after rollback")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		applied, _ := AppliedVersions(db)
		migrations, _ := loadMigrations()
		if len(applied) != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), len(applied))
		}
	})

	t.Run("increment function", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		var got int64
		if err := db.QueryRow("SELECT increment(?)", 41).Scan(&got); err != nil {
			t.Fatalf("increment query failed: %v", err)
		}
		if got != 42 {
			t.Errorf("expected 42, got %d", got)
		}
	})
}
