package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE public.recommendations (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     student_id UUID REFERENCES students(id) ON DELETE CASCADE,
//     event_id   UUID REFERENCES events(id) ON DELETE CASCADE,
//     score      DOUBLE PRECISION,
//     created_at TIMESTAMPTZ DEFAULT NOW()
// );

type Recommendation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;index" json:"student_id"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid" json:"event_id"`
	Score     float64   `gorm:"column:score" json:"score"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
