package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/badmusic/internal/models"
	"github.com/desertthunder/badmusic/internal/repositories"
	"github.com/desertthunder/badmusic/internal/services"
	"github.com/desertthunder/badmusic/internal/shared"
	tu "github.com/desertthunder/badmusic/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// seed inserts two uploaded songs and two generated songs sharing a tag.
func seed(t *testing.T, db *sql.DB) {
	t.Helper()

	songs := repositories.NewSongRepository(db)
	for _, s := range []*models.Song{
		{ID: "s1", UserID: "u1", Author: "Alpha", Title: "First Light", SongPath: "u1/first.mp3", Genre: "City Pop", Duration: 185},
		{ID: "s2", UserID: "u2", Author: "Beta", Title: "Second Wind", SongPath: "u2/second.mp3", Genre: "Trap", Duration: 200},
	} {
		if err := songs.Create(s); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
	}

	suno := repositories.NewSunoSongRepository(db)
	for _, s := range []*models.SunoSong{
		{ID: "g1", UserID: "u1", Author: "Gen", Title: "Neon Rain", AudioURL: "https://cdn.example.com/g1.mp3", Tags: "synthwave, night", Lyrics: "rain on chrome"},
		{ID: "g2", UserID: "u1", Author: "Gen", Title: "Night Drive", AudioURL: "https://cdn.example.com/g2.mp3", Tags: "night"},
	} {
		if err := suno.Create(s); err != nil {
			t.Fatalf("failed to create suno song: %v", err)
		}
	}
}

func newTestRunner(t *testing.T, db *sql.DB) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.User.ID = "listener"
	config.Storage.URL = "http://storage.local"
	config.Playback.DebounceMS = 20
	config.Playback.CooldownMS = 50
	config.Playback.IncrementRate = 0

	output := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		DB:     db,
	})
	return r, output
}

// run executes args against the full command tree with a config path that does not exist.
func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "missing.toml")
	return newApp(r).Run(context.Background(), append([]string{"badmusic", "--config", cfg}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			backend := tu.NewMockBackend()
			db := setupTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				DB:         db,
				Backend:    backend,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.backend != backend {
				t.Error("expected backend to be set")
			}
			if runner.db != db || runner.library == nil {
				t.Error("expected repositories to be attached")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.db != nil {
				t.Error("expected database to open lazily")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("returns error on write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("returns error when newline write fails", func(t *testing.T) {
			w := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &w})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})

		t.Run("returns error for unmarshalable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := runner.writeJSON(map[string]any{"ch": make(chan int)}, false); err == nil {
				t.Error("expected marshal error")
			}
		})
	})

	t.Run("remote", func(t *testing.T) {
		tests := []struct {
			name    string
			driver  string
			wantErr error
			check   func(services.Backend) bool
		}{
			{name: "sqlite", driver: "sqlite", check: func(b services.Backend) bool { return b.Name() == "sqlite" }},
			{name: "default", driver: "", check: func(b services.Backend) bool { return b.Name() == "sqlite" }},
			{name: "rest", driver: "rest", check: func(b services.Backend) bool { _, ok := b.(*services.RESTBackend); return ok }},
			{name: "unknown", driver: "mongo", wantErr: shared.ErrInvalidConfig},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				r, _ := newTestRunner(t, setupTestDB(t))
				r.config.Database.Driver = tc.driver

				b, err := r.remote(context.Background())
				if tc.wantErr != nil {
					if !errors.Is(err, tc.wantErr) {
						t.Errorf("expected %v, got %v", tc.wantErr, err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !tc.check(b) {
					t.Errorf("unexpected backend %T", b)
				}
			})
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("songs list", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)

		if err := run(t, r, "songs", "list", "--format", "csv", "--genre", "Trap"); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != 2 || !strings.Contains(lines[1], "Second Wind") {
			t.Errorf("expected header and one Trap song, got %q", out.String())
		}
	})

	t.Run("songs list to file", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)
		path := filepath.Join(t.TempDir(), "songs.md")

		if err := run(t, r, "songs", "list", "--format", "markdown", "--output", path); err != nil {
			t.Fatalf("songs list failed: %v", err)
		}
		if out.Len() != 0 {
			t.Error("expected nothing on stdout")
		}
		tu.AssertFileExists(t, path)
		if data := tu.MustReadFile(t, path); !strings.Contains(data, "First Light") {
			t.Errorf("expected markdown listing, got %s", data)
		}
	})

	t.Run("setup rollback", func(t *testing.T) {
		db := setupTestDB(t)
		r, out := newTestRunner(t, db)

		if err := run(t, r, "setup", "rollback"); err != nil {
			t.Fatalf("setup rollback failed: %v", err)
		}
		if !strings.Contains(out.String(), "1 remaining") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("export", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)
		dir := filepath.Join(t.TempDir(), "export")

		if err := run(t, r, "export", "--format", "csv", "--dir", dir, "--only", "songs", "--only", "suno"); err != nil {
			t.Fatalf("export failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "songs.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "suno.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if data := tu.MustReadFile(t, filepath.Join(dir, "suno.csv")); !strings.Contains(data, "g1") {
			t.Errorf("expected generated songs in export, got %s", data)
		}
		if !strings.Contains(out.String(), "Exported 2 of 2 collections") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("export rejects unknown collection", func(t *testing.T) {
		db := setupTestDB(t)
		r, _ := newTestRunner(t, db)

		err := run(t, r, "export", "--dir", t.TempDir(), "--only", "albums")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("songs show", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)

		if err := run(t, r, "songs", "show", "s1"); err != nil {
			t.Fatalf("songs show failed: %v", err)
		}
		got := out.String()
		if !strings.Contains(got, "First Light") || !strings.Contains(got, "http://storage.local/storage/v1/object/public/songs/u1/first.mp3") {
			t.Errorf("unexpected detail %q", got)
		}
	})

	t.Run("songs show missing", func(t *testing.T) {
		r, _ := newTestRunner(t, setupTestDB(t))
		if err := run(t, r, "songs", "show", "nope"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if err := run(t, r, "songs", "show"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("suno show json and similar", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)

		if err := run(t, r, "suno", "show", "--json", "g1"); err != nil {
			t.Fatalf("suno show failed: %v", err)
		}
		var got struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		}
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", out.String(), err)
		}
		if got.Title != "Neon Rain" || got.URL != "https://cdn.example.com/g1.mp3" {
			t.Errorf("unexpected JSON %+v", got)
		}

		out.Reset()
		if err := run(t, r, "suno", "show", "g1"); err != nil {
			t.Fatalf("suno show failed: %v", err)
		}
		if !strings.Contains(out.String(), "Similar") || !strings.Contains(out.String(), "Night Drive") {
			t.Errorf("expected similar songs, got %q", out.String())
		}
	})

	t.Run("liked add list remove", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)

		if err := run(t, r, "liked", "add", "s2"); err != nil {
			t.Fatalf("liked add failed: %v", err)
		}
		if err := run(t, r, "liked", "add", "s2"); !errors.Is(err, shared.ErrAlreadyLiked) {
			t.Errorf("expected ErrAlreadyLiked, got %v", err)
		}

		out.Reset()
		if err := run(t, r, "liked", "list", "--format", "json"); err != nil {
			t.Fatalf("liked list failed: %v", err)
		}
		if !strings.Contains(out.String(), `"like_count": 1`) {
			t.Errorf("expected like count in %q", out.String())
		}

		if err := run(t, r, "liked", "remove", "s2"); err != nil {
			t.Fatalf("liked remove failed: %v", err)
		}
		if err := run(t, r, "liked", "remove", "s2"); !errors.Is(err, shared.ErrNotLiked) {
			t.Errorf("expected ErrNotLiked, got %v", err)
		}
	})

	t.Run("genres toggle", func(t *testing.T) {
		r, out := newTestRunner(t, nil)

		if err := run(t, r, "genres", "--selected", "Trap", "--toggle", "City Pop", "--toggle", "Trap"); err != nil {
			t.Fatalf("genres failed: %v", err)
		}
		got := out.String()
		if !strings.Contains(got, "[✓] City Pop") || !strings.Contains(got, "[ ] Trap") {
			t.Errorf("unexpected genre marks %q", got)
		}
		if !strings.Contains(got, "Selected: City Pop") {
			t.Errorf("expected selection summary, got %q", got)
		}

		if err := run(t, r, "genres", "--toggle", "Polka"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("play collapses a burst and counts once", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		r, out := newTestRunner(t, db)

		if err := run(t, r, "play", "s1", "s2"); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		var result PlayResult
		if err := json.Unmarshal(out.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON %q: %v", out.String(), err)
		}
		if len(result.Accepted) != 1 || result.Accepted[0].ID != "s2" {
			t.Errorf("expected only s2 accepted, got %+v", result.Accepted)
		}
		if result.State.ActiveTrackID != "s2" || !result.State.IsPlaying {
			t.Errorf("unexpected state %+v", result.State)
		}
		if result.Track == nil || result.Track.Count != 1 {
			t.Errorf("expected s2 counted once, got %+v", result.Track)
		}

		song, err := repositories.NewSongRepository(db).Get("s1")
		if err != nil {
			t.Fatalf("failed to get s1: %v", err)
		}
		if song.Count != 0 {
			t.Errorf("expected s1 uncounted, got %d", song.Count)
		}
	})

	t.Run("play validation", func(t *testing.T) {
		r, _ := newTestRunner(t, setupTestDB(t))
		if err := run(t, r, "play"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, r, "play", "--catalog", "vinyl", "s1"); !errors.Is(err, shared.ErrUnknownCatalog) {
			t.Errorf("expected ErrUnknownCatalog, got %v", err)
		}
	})

	t.Run("setup backend from curl file", func(t *testing.T) {
		dir := t.TempDir()
		curlFile := filepath.Join(dir, "request.sh")
		curl := `curl 'https://abc.supabase.co/rest/v1/songs?select=*' -H 'apikey: anon-123'`
		if err := os.WriteFile(curlFile, []byte(curl), 0644); err != nil {
			t.Fatalf("failed to write curl file: %v", err)
		}
		configPath := filepath.Join(dir, "config.toml")

		r, _ := newTestRunner(t, nil)
		err := newApp(r).Run(context.Background(), []string{"badmusic", "--config", configPath, "setup", "backend", "--curl-file", curlFile})
		if err != nil {
			t.Fatalf("setup backend failed: %v", err)
		}

		config, err := shared.LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if config.Database.Driver != "rest" || config.Backend.URL != "https://abc.supabase.co" || config.Backend.AnonKey != "anon-123" {
			t.Errorf("unexpected saved config %+v %+v", config.Database, config.Backend)
		}
	})

	t.Run("setup backend requires one source", func(t *testing.T) {
		r, _ := newTestRunner(t, nil)
		if err := run(t, r, "setup", "backend"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := run(t, r, "setup", "backend", "--curl", "x", "--curl-file", "y"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("setup database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")

		r, out := newTestRunner(t, nil)
		t.Chdir(dir)
		err := newApp(r).Run(context.Background(), []string{"badmusic", "--config", configPath, "setup", "database"})
		if err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		tu.AssertFileExists(t, configPath)
		tu.AssertFileExists(t, filepath.Join(dir, "badmusic.db"))
		if !strings.Contains(out.String(), "Database ready") {
			t.Errorf("unexpected output %q", out.String())
		}
	})
}
