package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/comigor/schoolassist-go/internal/conversation"
)

// messageRecord is the gorm model behind the postgres store.
type messageRecord struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	MessageID string `gorm:"column:message_id;index"`
	SessionID string `gorm:"index"`
	Role      string
	Content   string
	CreatedAt time.Time
}

func (messageRecord) TableName() string { return "messages" }

func toRecord(sessionID string, msg conversation.Message) messageRecord {
	return messageRecord{
		MessageID: msg.ID,
		SessionID: sessionID,
		Role:      msg.Role.String(),
		Content:   msg.Content,
		CreatedAt: msg.Timestamp,
	}
}

func (r messageRecord) message() (conversation.Message, error) {
	role, err := conversation.ParseRole(r.Role)
	if err != nil {
		return conversation.Message{}, err
	}
	return conversation.Message{
		ID:        r.MessageID,
		Content:   r.Content,
		Role:      role,
		Timestamp: r.CreatedAt.UTC(),
	}, nil
}

// Postgres stores transcripts in PostgreSQL through gorm.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects with dsn and migrates the messages table.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&messageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate messages: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Append(ctx context.Context, sessionID string, msg conversation.Message) (conversation.Message, error) {
	msg = prepare(msg)
	rec := toRecord(sessionID, msg)
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return conversation.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (p *Postgres) List(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	var recs []messageRecord
	if err := p.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("seq asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	out := make([]conversation.Message, 0, len(recs))
	for _, rec := range recs {
		m, err := rec.message()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (p *Postgres) Clear(ctx context.Context, sessionID string) error {
	return p.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&messageRecord{}).Error
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
