package sink

import (
	"context"
	"time"

	"github.com/cfoust/padlink/pkg/protocol"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CommandRecord is one accepted command in the flight log.
type CommandRecord struct {
	ID       uint      `gorm:"primaryKey"`
	Received time.Time `gorm:"index;not null"`
	X        float64
	Y        float64
	Z        float64
	Rot      float64
}

// Recorder appends every accepted command to a SQLite database.
type Recorder struct {
	db *gorm.DB
}

func OpenRecorder(path string) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&CommandRecord{}); err != nil {
		return nil, err
	}

	return &Recorder{db: db}, nil
}

func (r *Recorder) Handle(ctx context.Context, message protocol.ControlMessage) error {
	return r.db.WithContext(ctx).Create(&CommandRecord{
		Received: time.Now(),
		X:        message.X(),
		Y:        message.Y(),
		Z:        message.Z(),
		Rot:      message.Rot(),
	}).Error
}

// Recent returns up to limit records, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]CommandRecord, error) {
	var records []CommandRecord
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
