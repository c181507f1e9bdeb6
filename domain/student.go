package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// CREATE TABLE public.students (
//     id                BIGINT UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     participant_id    TEXT UNIQUE NOT NULL,
//     institution       TEXT,
//     direction_id      UUID REFERENCES directions(id),
//     profile_embedding VECTOR(384),
//     created_at        TIMESTAMPTZ DEFAULT NOW()
// );

type Student struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ParticipantID    string           `gorm:"column:participant_id;uniqueIndex;not null" json:"participant_id"`
	Institution      string           `gorm:"column:institution;type:text" json:"institution"`
	DirectionID      *uuid.UUID       `gorm:"column:direction_id;type:uuid" json:"direction_id"`
	ProfileEmbedding *pgvector.Vector `gorm:"column:profile_embedding;type:vector(384)" json:"-"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`

	Direction *Direction `gorm:"foreignKey:DirectionID" json:"direction,omitempty"`
}

func (Student) TableName() string {
	return "students"
}
