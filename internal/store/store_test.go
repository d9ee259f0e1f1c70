package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/shopspring/decimal"
)

func TestOpen_MissingFileLoadsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error opening a missing state file: %v", err)
	}
	snap := s.Snapshot()
	if snap.Global.ErrorStatus != "" {
		t.Errorf("expected no error_status on first boot, got %q", snap.Global.ErrorStatus)
	}
	if snap.BuyRuntime.State() != domain.StateIdle {
		t.Errorf("expected idle default state, got %s", snap.BuyRuntime.State())
	}
}

func TestOpen_CorruptFileLoadsDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected hard error on a corrupt state file: %v", err)
	}
	snap := s.Snapshot()
	if snap.Global.ErrorStatus == "" {
		t.Error("expected error_status to be set for a corrupt snapshot")
	}
}

func TestCommit_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	next := domain.NewSystemState()
	next.BuyRuntime.On = true
	next.BuyRuntime.SessionID = "buy_a1b2c3d4"
	next.BuyRuntime.ExecMap[0] = domain.RowExecStats{
		Index:      0,
		EntryPrice: decimal.NewFromFloat(100.5),
		Lots:       decimal.NewFromFloat(0.01),
	}
	next.Settings.Buy.Rows = []domain.GridRow{{Index: 0, Lots: decimal.NewFromFloat(0.01)}}

	if err := s.Commit(next); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	snap := reopened.Snapshot()
	if snap.BuyRuntime.SessionID != "buy_a1b2c3d4" {
		t.Errorf("expected session id to round-trip, got %q", snap.BuyRuntime.SessionID)
	}
	if !snap.BuyRuntime.ExecMap[0].EntryPrice.Equal(decimal.NewFromFloat(100.5)) {
		t.Errorf("expected decimal entry price to round-trip, got %s", snap.BuyRuntime.ExecMap[0].EntryPrice)
	}
	if len(snap.Settings.Buy.Rows) != 1 {
		t.Errorf("expected rows to round-trip, got %d", len(snap.Settings.Buy.Rows))
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected the rename to leave a file at the final path: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("expected no leftover temp file, found %s", e.Name())
		}
	}
}

func TestSnapshot_IsIndependentOfLiveState(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	next := domain.NewSystemState()
	next.BuyRuntime.ExecMap[0] = domain.RowExecStats{Index: 0}
	if err := s.Commit(next); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	snap.BuyRuntime.ExecMap[1] = domain.RowExecStats{Index: 1}

	fresh := s.Snapshot()
	if len(fresh.BuyRuntime.ExecMap) != 1 {
		t.Errorf("expected mutating a snapshot to leave the store's live state untouched, got %d entries", len(fresh.BuyRuntime.ExecMap))
	}
}
