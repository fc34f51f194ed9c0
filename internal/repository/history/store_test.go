package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/servo-app/refinery/internal/db"
	domhist "github.com/servo-app/refinery/internal/domain/history"
)

func TestRepo_SaveLoadRoundTrip(t *testing.T) {
	s := newMockStore()
	r := New(s, "", 30*24*time.Hour)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	in := []domhist.Entry{
		domhist.Reconstruct("id-2", "plombier", at.Add(time.Minute)),
		domhist.Reconstruct("id-1", "villa", at),
	}
	if err := r.Save(ctx, "v1", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.ttls["refinery:history:v1"] != 30*24*time.Hour {
		t.Errorf("ttl = %v, want 720h", s.ttls["refinery:history:v1"])
	}

	out, err := r.Load(ctx, "v1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].ID() != "id-2" || out[1].Query() != "villa" {
		t.Fatalf("unexpected entries: %+v", out)
	}
	if !out[1].SearchedAt().Equal(at) {
		t.Errorf("SearchedAt = %v, want %v", out[1].SearchedAt(), at)
	}
}

func TestRepo_LoadMissing(t *testing.T) {
	r := New(newMockStore(), "app:", time.Hour)
	out, err := r.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice, got %v", out)
	}
}

func TestRepo_LoadCorrupt(t *testing.T) {
	s := newMockStore()
	s.data["refinery:history:v1"] = []byte("{not json")
	r := New(s, "", time.Hour)
	if _, err := r.Load(context.Background(), "v1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRepo_LoadStoreError(t *testing.T) {
	s := newMockStore()
	s.getErr = &db.Error{Op: db.OpGet, Err: errors.New("connection reset")}
	r := New(s, "", time.Hour)

	_, err := r.Load(context.Background(), "v1")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

func TestRepo_Delete(t *testing.T) {
	s := newMockStore()
	r := New(s, "x:", time.Hour)
	if err := r.Delete(context.Background(), "v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(s.deleted) != 2 || s.deleted[0] != "x:history:v1" || s.deleted[1] != "x:path:v1" {
		t.Errorf("deleted = %v", s.deleted)
	}
}

func TestRepo_Path(t *testing.T) {
	s := newMockStore()
	r := New(s, "", time.Hour)
	ctx := context.Background()

	p, err := r.LoadPath(ctx, "v1")
	if err != nil || p != "" {
		t.Fatalf("LoadPath on empty store = %q, %v", p, err)
	}
	if err := r.SavePath(ctx, "v1", "/recherche?q=villa"); err != nil {
		t.Fatalf("SavePath: %v", err)
	}
	p, err = r.LoadPath(ctx, "v1")
	if err != nil || p != "/recherche?q=villa" {
		t.Fatalf("LoadPath = %q, %v", p, err)
	}
}

func TestRepo_SaveError(t *testing.T) {
	s := newMockStore()
	s.setErr = errors.New("READONLY")
	r := New(s, "", time.Hour)
	if err := r.Save(context.Background(), "v1", nil); err == nil {
		t.Fatal("expected error")
	}
}
