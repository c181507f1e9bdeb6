package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// CREATE TABLE public.clusters (
//     id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     title      TEXT NOT NULL,
//     centroid   VECTOR(384),
//     created_at TIMESTAMPTZ DEFAULT NOW()
// );
// CREATE UNIQUE INDEX clusters_title_lower_idx ON clusters (LOWER(title));

type Cluster struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title     string           `gorm:"column:title;type:text;not null" json:"title"`
	Centroid  *pgvector.Vector `gorm:"column:centroid;type:vector(384)" json:"-"`
	CreatedAt time.Time        `gorm:"column:created_at" json:"created_at"`
}

func (Cluster) TableName() string {
	return "clusters"
}

// CREATE TABLE public.event_clusters (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     event_id   UUID REFERENCES events(id) ON DELETE CASCADE,
//     cluster_id UUID REFERENCES clusters(id) ON DELETE CASCADE,
//     UNIQUE (event_id, cluster_id)
// );

type EventCluster struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;uniqueIndex:idx_event_cluster" json:"event_id"`
	ClusterID uuid.UUID `gorm:"column:cluster_id;type:uuid;uniqueIndex:idx_event_cluster" json:"cluster_id"`
}

func (EventCluster) TableName() string {
	return "event_clusters"
}
