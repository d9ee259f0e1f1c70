package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Adikumaw/elastic-dca-trader/internal/engine"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DecisionRecord is one row of the append-only decision ledger (C11). It
// is secondary and non-authoritative: state.json alone reconstructs
// runtime truth on restart, this table exists for forensic replay.
type DecisionRecord struct {
	Seq     uint64 `gorm:"primaryKey;autoIncrement"`
	Side    string
	Action  string
	Comment string
	Volume  string
	Profit  string
	At      time.Time
}

// Ledger is a gorm/sqlite-backed engine.AuditSink.
type Ledger struct {
	db *gorm.DB
}

// OpenLedger connects to path (creating its directory if needed) and
// auto-migrates the DecisionRecord table. Grounded on the teacher's
// infra/storage/sqlite.go NewStorage, repointed from coin/config metadata
// to decision records.
func OpenLedger(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	if err := db.AutoMigrate(&DecisionRecord{}); err != nil {
		return nil, fmt.Errorf("migrate ledger database: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Record appends one row. engine.AuditSink has no error return, so a
// write failure here never blocks a tick; gorm's own logger (set to Warn
// level above) is the only place such a failure surfaces.
func (l *Ledger) Record(entry engine.AuditEntry) {
	vol, profit := "", ""
	if !entry.Volume.Equal(decimal.Zero) {
		vol = entry.Volume.String()
	}
	if !entry.Profit.Equal(decimal.Zero) {
		profit = entry.Profit.String()
	}
	rec := DecisionRecord{
		Side:    string(entry.Side),
		Action:  string(entry.Action),
		Comment: entry.Comment,
		Volume:  vol,
		Profit:  profit,
		At:      entry.At,
	}
	l.db.Create(&rec)
}

// Recent returns the last n ledger rows, newest first, for a forensic
// replay read-model (not exercised by the decision pipeline itself).
func (l *Ledger) Recent(n int) ([]DecisionRecord, error) {
	var records []DecisionRecord
	err := l.db.Order("seq desc").Limit(n).Find(&records).Error
	return records, err
}
