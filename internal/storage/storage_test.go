package storage

import (
	"os"
	"testing"
	"time"
)

func TestDataPaths(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("data directory was not created: %s", dataDir)
	}
}

func TestSearchKeyStable(t *testing.T) {
	a := searchKey("x6/x6/x6/x6/x6/x6 1 1")
	b := searchKey("x6/x6/x6/x6/x6/x6 1 1")
	if string(a) != string(b) {
		t.Errorf("searchKey is not deterministic for identical TPS input")
	}

	c := searchKey("x6/x6/x6/x6/x6/x5,1 2 1")
	if string(a) == string(c) {
		t.Errorf("searchKey collided for distinct TPS input")
	}
}

func TestRecordAndLookupSearch(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	store, err := Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	tps := "x6/x6/x6/x6/x6/x6 1 1"
	if err := store.RecordSearch(SearchRecord{
		TPS:      tps,
		BestMove: "c3",
		Elapsed:  250 * time.Millisecond,
	}); err != nil {
		t.Fatalf("RecordSearch failed: %v", err)
	}

	rec, ok := store.LookupSearch(tps)
	if !ok {
		t.Fatalf("expected a recorded search for %q", tps)
	}
	if rec.BestMove != "c3" {
		t.Errorf("BestMove = %q, want %q", rec.BestMove, "c3")
	}

	if _, ok := store.LookupSearch("some other position"); ok {
		t.Errorf("expected no record for an unrelated position")
	}
}
