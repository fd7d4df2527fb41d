package store

import (
	"context"
	"path/filepath"
	"testing"

	logx "campusbot/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := OpenSQLite(Config{Path: filepath.Join(t.TempDir(), "docs.db")}, logx.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteDocumentRoundTrip(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.GetDocument(ctx, "users/42"); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	doc := map[string]any{"universityId": "nstu", "group": "G1"}
	if err := st.SetDocument(ctx, "users/42", doc); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}

	got, ok, err := st.GetDocument(ctx, "users/42")
	if err != nil || !ok {
		t.Fatalf("GetDocument: ok=%v err=%v", ok, err)
	}
	if got["universityId"] != "nstu" || got["group"] != "G1" {
		t.Fatalf("round trip mismatch: %v", got)
	}

	// Upsert replaces in place.
	if err := st.SetDocument(ctx, "users/42", map[string]any{"group": "G2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _, _ = st.GetDocument(ctx, "users/42")
	if got["group"] != "G2" {
		t.Fatalf("upsert not applied: %v", got)
	}
	if _, stale := got["universityId"]; stale {
		t.Fatalf("upsert must replace the whole document: %v", got)
	}

	if err := st.DeleteDocument(ctx, "users/42"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, ok, _ := st.GetDocument(ctx, "users/42"); ok {
		t.Fatal("document survived delete")
	}
	// Deleting a missing document is not an error.
	if err := st.DeleteDocument(ctx, "users/42"); err != nil {
		t.Fatalf("delete of missing document: %v", err)
	}
}

func TestSQLiteListCollection(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	seed := map[string]map[string]any{
		"universities/nstu/schedule/G1/first/1":   {"d": "mon"},
		"universities/nstu/schedule/G1/first/3":   {"d": "wed"},
		"universities/nstu/schedule/G1/second/1":  {"d": "mon2"},
		"universities/nstu/schedule/G2/first/1":   {"d": "other group"},
		"universities/nstu/schedule/G1/first/1/x": {"d": "nested"},
	}
	for p, d := range seed {
		if err := st.SetDocument(ctx, p, d); err != nil {
			t.Fatalf("seed %s: %v", p, err)
		}
	}

	entries, err := st.ListCollection(ctx, "universities/nstu/schedule/G1/first")
	if err != nil {
		t.Fatalf("ListCollection: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 direct children: %v", len(entries), entries)
	}
	if entries[0].Key != "1" || entries[1].Key != "3" {
		t.Fatalf("keys = %q, %q", entries[0].Key, entries[1].Key)
	}
	if entries[1].Data["d"] != "wed" {
		t.Fatalf("entry data = %v", entries[1].Data)
	}

	empty, err := st.ListCollection(ctx, "universities/none/schedule/G1/first")
	if err != nil {
		t.Fatalf("empty listing: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no entries, got %v", empty)
	}
}
