package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE public.feedback (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     student_id UUID REFERENCES students(id) ON DELETE CASCADE,
//     rating     INTEGER,
//     comment    TEXT,
//     created_at TIMESTAMPTZ DEFAULT NOW()
// );

type Feedback struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;index" json:"student_id"`
	Rating    int       `gorm:"column:rating" json:"rating"`
	Comment   string    `gorm:"column:comment;type:text" json:"comment"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}
