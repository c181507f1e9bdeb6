package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE public.favorites (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     student_id UUID REFERENCES students(id) ON DELETE CASCADE,
//     event_id   UUID REFERENCES events(id) ON DELETE CASCADE,
//     created_at TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (student_id, event_id)
// );

type Favorite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;uniqueIndex:idx_favorite_student_event" json:"student_id"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;uniqueIndex:idx_favorite_student_event" json:"event_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
