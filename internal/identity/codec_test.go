package identity

import (
	"errors"
	"testing"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// I7: encode(side, hash, i) then decode yields exactly (side, hash, i).
	cases := []struct {
		side domain.Side
		hash string
		idx  int
	}{
		{domain.SideBuy, "a1b2c3d4", 0},
		{domain.SideSell, "deadbeef", 17},
		{domain.SideBuy, "00000000", 999999},
	}

	for _, c := range cases {
		tag := Encode(c.side, c.hash, c.idx)
		got, err := Decode(tag)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", tag, err)
		}
		if got.Side != c.side || got.Hash != c.hash || got.Index != c.idx {
			t.Errorf("round trip mismatch: got %+v, want side=%s hash=%s idx=%d", got, c.side, c.hash, c.idx)
		}
	}
}

func TestDecode_RejectsForeignTags(t *testing.T) {
	cases := []string{
		"",
		"buy_idx0",
		"buy_a1b2c3d4",
		"buy_A1B2C3D4_idx0", // uppercase hex not allowed
		"hold_a1b2c3d4_idx0",
		"buy_a1b2c3d4_idx01", // leading zero not allowed beyond "0"
		"buy_a1b2c3_idx0",    // hash too short
		"buy_a1b2c3d4e5_idx0",
		"sl_a1b2c3d4_idx0",
		"manual-order",
	}

	for _, c := range cases {
		_, err := Decode(c)
		if !errors.Is(err, domain.ErrForeignTag) {
			t.Errorf("Decode(%q) = %v, want ErrForeignTag", c, err)
		}
	}
}

func TestDecode_AcceptsZeroIndex(t *testing.T) {
	tag, err := Decode("sell_0123abcd_idx0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.Index != 0 {
		t.Errorf("expected index 0, got %d", tag.Index)
	}
}

func TestTag_SessionID(t *testing.T) {
	tag, err := Decode("buy_a1b2c3d4_idx3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tag.SessionID(); got != "buy_a1b2c3d4" {
		t.Errorf("SessionID() = %q, want %q", got, "buy_a1b2c3d4")
	}
}

func TestNewSessionID_MatchesGrammar(t *testing.T) {
	id := NewSessionID(domain.SideBuy)
	tag := id + "_idx0"
	if _, err := Decode(tag); err != nil {
		t.Errorf("generated session id %q does not produce a decodable tag: %v", id, err)
	}
}

func TestSessionHash_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		h := SessionHash()
		if len(h) != 8 {
			t.Fatalf("expected 8-char hash, got %q", h)
		}
		if seen[h] {
			t.Fatalf("hash collision on iteration %d: %q", i, h)
		}
		seen[h] = true
	}
}
