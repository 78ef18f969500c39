package store

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ChatLog is one persisted chat line.
type ChatLog struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Nickname  string    `gorm:"size:64;index;not null" json:"nickname"`
	Room      string    `gorm:"size:128;index;not null" json:"room"`
	Message   string    `gorm:"type:text;not null" json:"message"`
}

// TableName returns the table name for ChatLog model.
func (ChatLog) TableName() string {
	return "chat_logs"
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the chat_logs table.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&ChatLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}
