package chatlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MessageModel is the GORM persistence model. Seq is a database-assigned
// sequence that keeps ordering stable when timestamps collide.
type MessageModel struct {
	ID         string    `gorm:"primaryKey"`
	Seq        int64     `gorm:"autoIncrement;uniqueIndex"`
	Role       string    `gorm:"not null"`
	Content    string    `gorm:"type:text;not null"`
	PageNumber int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&MessageModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Append implements Store.
func (s *GormStore) Append(ctx context.Context, content string, role Role, pageNumber int) (Message, error) {
	if err := validateAppend(content, role); err != nil {
		return Message{}, err
	}
	model := MessageModel{
		ID:         uuid.NewString(),
		Role:       string(role),
		Content:    content,
		PageNumber: pageNumber,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return Message{}, fmt.Errorf("append message: %w", err)
	}
	return messageFromModel(model), nil
}

// Recent implements Store: newest first from the database, then reversed
// to chronological order.
func (s *GormStore) Recent(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	var models []MessageModel
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, seq DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs := make([]Message, 0, len(models))
	for i := len(models) - 1; i >= 0; i-- {
		msgs = append(msgs, messageFromModel(models[i]))
	}
	return msgs, nil
}

// Clear implements Store.
func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&MessageModel{}).Error; err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

func messageFromModel(m MessageModel) Message {
	return Message{
		ID:         m.ID,
		Content:    m.Content,
		Role:       Role(m.Role),
		PageNumber: m.PageNumber,
		CreatedAt:  m.CreatedAt,
	}
}
