package domain

import (
	"github.com/google/uuid"
)

// CREATE TABLE public.directions (
//     id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     title      TEXT NOT NULL,
//     cluster_id UUID REFERENCES clusters(id),
//     UNIQUE (title, cluster_id)
// );

type Direction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title     string     `gorm:"column:title;type:text;not null;uniqueIndex:idx_direction_title_cluster" json:"title"`
	ClusterID *uuid.UUID `gorm:"column:cluster_id;type:uuid;uniqueIndex:idx_direction_title_cluster" json:"cluster_id"`
}

func (Direction) TableName() string {
	return "directions"
}
