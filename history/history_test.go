package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ocm"
)

// Store must plug into Command.Invoke via ocm.WithRecorder.
var _ ocm.Recorder = (*Store)(nil)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM invocations").Scan(&count); err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_StampsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("user_version query failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

// fixedClock hands out strictly increasing timestamps.
func fixedClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

func openTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"),
		WithIDs(NewFixedIDs(ids...)),
		WithNow(fixedClock(time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecord_And_Get(t *testing.T) {
	s := openTestStore(t, "id-001")
	ctx := context.Background()

	inv := ocm.Invocation{
		Schema:   "ls",
		Rendered: "ls -l /tmp",
		ExitCode: 0,
		Stdout:   "total 0\n",
		Stderr:   "",
	}
	if err := s.Record(ctx, inv); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	rec, err := s.Get(ctx, "id-001")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.Schema != "ls" || rec.Rendered != "ls -l /tmp" || rec.ExitCode != 0 {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Stdout != "total 0\n" {
		t.Errorf("stdout = %q", rec.Stdout)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at was not stored")
	}
}

func TestRecord_FailedInvocation(t *testing.T) {
	s := openTestStore(t, "id-001")
	ctx := context.Background()

	inv := ocm.Invocation{
		Schema:   "deploy",
		Rendered: "deploy --env prod",
		ExitCode: 2,
		Stderr:   "permission denied\n",
	}
	if err := s.Record(ctx, inv); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	rec, err := s.Get(ctx, "id-001")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec.ExitCode != 2 {
		t.Errorf("exit_code = %d, want 2", rec.ExitCode)
	}
	if rec.Stderr != "permission denied\n" {
		t.Errorf("stderr = %q", rec.Stderr)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := openTestStore(t, "id-001", "id-002", "id-003")
	ctx := context.Background()

	for i, rendered := range []string{"first", "second", "third"} {
		inv := ocm.Invocation{Schema: "s", Rendered: rendered, ExitCode: i}
		if err := s.Record(ctx, inv); err != nil {
			t.Fatalf("Record() %d failed: %v", i, err)
		}
	}

	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Rendered != "third" || records[2].Rendered != "first" {
		t.Errorf("records not newest first: %q, %q, %q",
			records[0].Rendered, records[1].Rendered, records[2].Rendered)
	}
}

func TestList_Limit(t *testing.T) {
	s := openTestStore(t, "id-001", "id-002", "id-003")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Record(ctx, ocm.Invocation{Schema: "s", Rendered: "cmd"}); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	records, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestList_Empty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if records == nil {
		t.Error("List() returned nil, want empty slice")
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	gen := UUIDv7Generator{}
	a := gen.Generate()
	b := gen.Generate()
	if a == b {
		t.Error("generated ids should be unique")
	}
	if !(a < b) {
		t.Errorf("UUIDv7 ids should sort by creation time: %s !< %s", a, b)
	}
}

func TestFixedIDs_PanicsWhenExhausted(t *testing.T) {
	gen := NewFixedIDs("only")
	if got := gen.Generate(); got != "only" {
		t.Errorf("Generate() = %q, want %q", got, "only")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic after ids exhausted")
		}
	}()
	gen.Generate()
}
