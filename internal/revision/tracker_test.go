package revision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeDB struct {
	execSQL  []string
	execArgs [][]any
	execTag  pgconn.CommandTag
	execErr  error
	row      fakeRow
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execSQL = append(db.execSQL, sql)
	db.execArgs = append(db.execArgs, args)
	return db.execTag, db.execErr
}

func (db *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return db.row
}

func TestResetDeletesStateRow(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 1")}
	tracker := NewTracker(db, nil)

	if err := tracker.Reset(context.Background(), "UNRATE"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if len(db.execSQL) != 1 {
		t.Fatalf("Exec calls = %d, want 1", len(db.execSQL))
	}
	if !strings.Contains(db.execSQL[0], "DELETE FROM series_state") {
		t.Errorf("Reset SQL = %q, want delete from series_state", db.execSQL[0])
	}
	if len(db.execArgs[0]) != 1 || db.execArgs[0][0] != "UNRATE" {
		t.Errorf("Reset args = %v, want [UNRATE]", db.execArgs[0])
	}
}

func TestResetPropagatesError(t *testing.T) {
	dbErr := errors.New("connection reset")
	db := &fakeDB{execErr: dbErr}
	tracker := NewTracker(db, nil)

	err := tracker.Reset(context.Background(), "UNRATE")
	if !errors.Is(err, dbErr) {
		t.Errorf("Reset() error = %v, want wrapped %v", err, dbErr)
	}
}

func TestHasChangedNoPriorState(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}
	tracker := NewTracker(db, nil)

	changed, err := tracker.HasChanged(context.Background(), "UNRATE", "abc")
	if err != nil {
		t.Fatalf("HasChanged() error = %v", err)
	}
	if !changed {
		t.Error("HasChanged() = false for series with no prior state, want true")
	}
}

func TestHasChangedComparesStoredHash(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "abc"
		return nil
	}}}
	tracker := NewTracker(db, nil)

	changed, err := tracker.HasChanged(context.Background(), "UNRATE", "abc")
	if err != nil {
		t.Fatalf("HasChanged() error = %v", err)
	}
	if changed {
		t.Error("HasChanged() = true for matching hash, want false")
	}

	changed, err = tracker.HasChanged(context.Background(), "UNRATE", "def")
	if err != nil {
		t.Fatalf("HasChanged() error = %v", err)
	}
	if !changed {
		t.Error("HasChanged() = false for differing hash, want true")
	}
}

func TestSinceDateNoState(t *testing.T) {
	db := &fakeDB{row: fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}}
	tracker := NewTracker(db, nil)

	since, err := tracker.SinceDate(context.Background(), "UNRATE")
	if err != nil {
		t.Fatalf("SinceDate() error = %v", err)
	}
	if since != nil {
		t.Errorf("SinceDate() = %v for series with no state, want nil", since)
	}
}
