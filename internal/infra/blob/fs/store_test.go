package fs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"seathub/internal/blob/core"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	info, err := s.Put(ctx, "hub/1.json", strings.NewReader(`{"seq":1}`), "application/json")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ETag == "" || info.Size != 9 {
		t.Fatalf("unexpected info: %+v", info)
	}

	got, rc, err := s.Get(ctx, "hub/1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"seq":1}` || got.ETag != info.ETag {
		t.Fatalf("round trip mismatch: %q %+v", data, got)
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("a"), ""); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("b"), ""); err == nil {
		t.Fatal("expected error overwriting existing key")
	}
}

func TestKeySanitization(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "  ", "../escape", "/absolute", "a/../../b"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), ""); err == nil {
			t.Errorf("expected rejection for key %q", key)
		}
	}
}

func TestMissingKeyReturnsNotFound(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
	if existed, err := s.Delete(ctx, "missing"); err != nil || existed {
		t.Fatalf("delete: expected (false,nil), got (%v,%v)", existed, err)
	}
}

func TestListFiltersByPrefixAndSkipsSidecars(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"hub/2.json", "hub/1.json", "seat/1.json"} {
		if _, err := s.Put(ctx, key, strings.NewReader("{}"), "application/json"); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "hub/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "hub/1.json" || infos[1].Key != "hub/2.json" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}

func TestDeleteRemovesDataAndSidecar(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := s.Put(ctx, "k", strings.NewReader("x"), ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	existed, err := s.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("delete: expected (true,nil), got (%v,%v)", existed, err)
	}
	infos, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected empty listing after delete, got %+v", infos)
	}
}
