package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE public.bot_users (
//     telegram_id   BIGINT PRIMARY KEY,
//     student_id    UUID UNIQUE REFERENCES students(id) ON DELETE CASCADE,
//     username      TEXT,
//     email         TEXT,
//     is_linked     BOOLEAN DEFAULT FALSE,
//     last_activity TIMESTAMPTZ DEFAULT NOW()
// );

type BotUser struct {
	TelegramID   int64      `gorm:"column:telegram_id;primaryKey" json:"telegram_id"`
	StudentID    *uuid.UUID `gorm:"column:student_id;type:uuid;uniqueIndex" json:"student_id"`
	Username     string     `gorm:"column:username;type:text" json:"username"`
	Email        string     `gorm:"column:email;type:text" json:"email"`
	IsLinked     bool       `gorm:"column:is_linked;default:false" json:"is_linked"`
	LastActivity time.Time  `gorm:"column:last_activity" json:"last_activity"`

	Student *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (BotUser) TableName() string {
	return "bot_users"
}
