package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessions_CreateAndGet(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.New().String(), Source: "synthetic"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("Create did not stamp StartedAt")
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Source != "synthetic" {
		t.Errorf("Source = %q, want synthetic", got.Source)
	}
	if got.EndedAt != nil {
		t.Errorf("EndedAt = %v on open session, want nil", got.EndedAt)
	}
}

func TestSessions_End(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.New().String(), Source: "serial"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ended := time.Now()
	if err := s.Sessions().End(sess.ID, ended); err != nil {
		t.Fatalf("End: %v", err)
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.EndedAt == nil {
		t.Fatal("EndedAt = nil after End")
	}
}

func TestSessions_EndMissing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Sessions().End(uuid.New().String(), time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("End of missing session = %v, want ErrNotFound", err)
	}
}

func TestSessions_GetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Sessions().GetByID(uuid.New().String()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID of missing session = %v, want ErrNotFound", err)
	}
}

func TestEvents_AppendAndList(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.New().String(), Source: "synthetic"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create session: %v", err)
	}

	kinds := []string{"gesture.close", "gesture.open", "command.sent"}
	for _, kind := range kinds {
		ev := &Event{SessionID: sess.ID, Kind: kind, Detail: "x"}
		if err := s.Events().Append(ev); err != nil {
			t.Fatalf("Append(%s): %v", kind, err)
		}
		if ev.ID == 0 {
			t.Errorf("Append(%s) left ID zero", kind)
		}
	}

	events, err := s.Events().ListBySession(sess.ID, 0)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, kind := range kinds {
		if events[i].Kind != kind {
			t.Errorf("events[%d].Kind = %q, want %q", i, events[i].Kind, kind)
		}
	}

	limited, err := s.Events().ListBySession(sess.ID, 2)
	if err != nil {
		t.Fatalf("ListBySession limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d events with limit 2, want 2", len(limited))
	}
}

func TestEvents_CountByKind(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{ID: uuid.New().String(), Source: "synthetic"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create session: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Events().Append(&Event{SessionID: sess.ID, Kind: "command.sent"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Events().Append(&Event{SessionID: sess.ID, Kind: "estop"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	count, err := s.Events().CountByKind(sess.ID, "command.sent")
	if err != nil {
		t.Fatalf("CountByKind: %v", err)
	}
	if count != 3 {
		t.Errorf("CountByKind = %d, want 3", count)
	}
}
