package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Maphikza/btc-tx-broadcaster/internal/broadcast"
	"github.com/Maphikza/btc-tx-broadcaster/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one broadcast attempt.
type Entry struct {
	gorm.Model
	RequestID    string `gorm:"index"`
	Network      string `gorm:"index"`
	Status       string `gorm:"index"`
	TxID         string `gorm:"index"`
	CurrentBlock uint64
	Error        string
}

// Journal stores broadcast outcomes in SQLite. It implements
// broadcast.Recorder.
type Journal struct {
	db      *gorm.DB
	network string
}

var _ broadcast.Recorder = (*Journal)(nil)

// Open creates or opens the journal database at dbPath.
func Open(dbPath string, network string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Broadcast journal opened", "path", dbPath)
	return &Journal{db: db, network: network}, nil
}

func (j *Journal) Record(requestID string, resp broadcast.Response) error {
	entry := Entry{
		RequestID:    requestID,
		Network:      j.network,
		Status:       resp.Status,
		TxID:         resp.TxID.String(),
		CurrentBlock: resp.CurrentBlock,
	}
	if resp.Error != nil {
		entry.Error = *resp.Error
	}
	if err := j.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.Order("created_at desc, id desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entries: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Since returns entries created at or after t, oldest first.
func (j *Journal) Since(t time.Time) ([]Entry, error) {
	var entries []Entry
	err := j.db.Where("created_at >= ?", t).Order("id asc").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entries: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
