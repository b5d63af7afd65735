package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookvault/bookvault-server/internal/store"
	"github.com/bookvault/bookvault-server/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify tables exist.
	for _, table := range []string{"books", "reviews"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestOpenClose(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	// Re-open should work (schema is idempotent).
	s2, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("re-open store: %v", err)
	}
	defer s2.Close()
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	earlier := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	later := earlier.Add(500 * time.Millisecond)

	if !(formatTime(earlier) < formatTime(later)) {
		t.Errorf("%q should sort before %q", formatTime(earlier), formatTime(later))
	}

	parsed, err := parseTime(formatTime(later))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(later) {
		t.Errorf("round trip: got %v, want %v", parsed, later)
	}
}

func TestUpdateReportsUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	books := storetest.Seed(t, s)

	res, err := s.SetReadingStatus(ctx, books[0].ID, books[0].ReadingStatus)
	if err != nil {
		t.Fatalf("SetReadingStatus: %v", err)
	}
	if res.Matched != 1 || res.Modified != 0 {
		t.Errorf("got %+v, want matched=1 modified=0", res)
	}

	res, err = s.UpdateBookContent(ctx, books[0].ID, books[0].Content())
	if err != nil {
		t.Fatalf("UpdateBookContent: %v", err)
	}
	if res.Matched != 1 || res.Modified != 0 {
		t.Errorf("got %+v, want matched=1 modified=0", res)
	}
}

func TestCategorySummaryLegacyBlankCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.db.Exec(`INSERT INTO books (id, title, title_fold, author, author_fold, owner_email)
		VALUES ('aaaaaaaaaaaaaaaaaaaaaaaa', 'Untitled', 'untitled', 'Anon', 'anon', 'x@example.com')`); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	got, err := s.CategorySummary(ctx)
	if err != nil {
		t.Fatalf("CategorySummary: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Unknown" || got[0].Count != 1 {
		t.Errorf("got %+v, want [{Unknown 1}]", got)
	}
}
