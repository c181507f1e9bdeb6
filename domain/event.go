package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// CREATE TABLE public.events (
//     id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     title             TEXT NOT NULL,
//     short_description TEXT,
//     description       TEXT,
//     format            TEXT,
//     start_date        DATE,
//     end_date          DATE,
//     link              TEXT,
//     image_url         TEXT,
//     vector_embedding  VECTOR(384),
//     likes_count       INTEGER DEFAULT 0,
//     dislikes_count    INTEGER DEFAULT 0,
//     is_active         BOOLEAN DEFAULT TRUE,
//     created_at        TIMESTAMPTZ DEFAULT NOW()
// );

type Event struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title            string           `gorm:"column:title;type:text;not null" json:"title"`
	ShortDescription string           `gorm:"column:short_description;type:text" json:"short_description"`
	Description      string           `gorm:"column:description;type:text" json:"description"`
	Format           string           `gorm:"column:format;type:text" json:"format"`
	StartDate        *time.Time       `gorm:"column:start_date;type:date" json:"start_date"`
	EndDate          *time.Time       `gorm:"column:end_date;type:date" json:"end_date"`
	Link             string           `gorm:"column:link;type:text" json:"link"`
	ImageURL         string           `gorm:"column:image_url;type:text" json:"image_url"`
	VectorEmbedding  *pgvector.Vector `gorm:"column:vector_embedding;type:vector(384)" json:"-"`
	LikesCount       int              `gorm:"column:likes_count;default:0" json:"likes_count"`
	DislikesCount    int              `gorm:"column:dislikes_count;default:0" json:"dislikes_count"`
	IsActive         bool             `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}
