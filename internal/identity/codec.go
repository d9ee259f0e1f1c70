// Package identity encodes and parses the position tag that binds a
// broker position to a session and grid index (C1): "{side}_{hash}_idx{n}".
package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Adikumaw/elastic-dca-trader/internal/domain"
	"github.com/google/uuid"
)

// tagPattern is the comment grammar from §6.
var tagPattern = regexp.MustCompile(`^(buy|sell)_([0-9a-f]{8})_idx(0|[1-9][0-9]*)$`)

// Tag is the parsed form of a managed position comment.
type Tag struct {
	Side  domain.Side
	Hash  string
	Index int
}

// SessionID reconstructs the "{side}_{hash}" session identifier this tag
// belongs to, for comparison against RuntimeState.SessionID (§3 invariant 2).
func (t Tag) SessionID() string {
	return fmt.Sprintf("%s_%s", t.Side, t.Hash)
}

// Encode renders a tag. It is pure and always produces a string matching
// tagPattern, given a well-formed hash.
func Encode(side domain.Side, hash string, index int) string {
	return fmt.Sprintf("%s_%s_idx%d", side, hash, index)
}

// Decode parses a position comment. A comment that does not match the
// grammar is "foreign" (domain.ErrForeignTag) — not managed by the engine,
// ignored for identity checks but not counted in aggregates.
func Decode(comment string) (Tag, error) {
	m := tagPattern.FindStringSubmatch(comment)
	if m == nil {
		return Tag{}, domain.ErrForeignTag
	}
	idx, err := strconv.Atoi(m[3])
	if err != nil {
		return Tag{}, domain.ErrForeignTag
	}
	return Tag{Side: domain.Side(m[1]), Hash: m[2], Index: idx}, nil
}

// SessionHash generates a new 8-lowercase-hex-character session hash.
// Grounded on the original's get_hash()/uuid.uuid4().hex[:8]: a UUIDv4 is
// already lowercase hex, so stripping the hyphens and truncating yields
// the same shape.
func SessionHash() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return raw[:8]
}

// NewSessionID allocates a fresh "{side}_{hash}" session identifier.
func NewSessionID(side domain.Side) string {
	return fmt.Sprintf("%s_%s", side, SessionHash())
}

// HashOf strips the "{side}_" prefix from a session id, returning the bare
// hash for use with Encode. Returns "" if sessionID has no session prefix.
func HashOf(sessionID string) string {
	parts := strings.SplitN(sessionID, "_", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
