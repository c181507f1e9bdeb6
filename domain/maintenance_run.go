package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.maintenance_runs (
//     id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     operation  TEXT NOT NULL,
//     status     TEXT NOT NULL,
//     summary    TEXT,
//     stats      JSONB,
//     log        TEXT,
//     created_at TIMESTAMPTZ DEFAULT NOW()
// );

// MaintenanceRun is the persisted audit record of one orchestrator operation.
type MaintenanceRun struct {
	ID        uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Operation string            `gorm:"column:operation;type:text;not null" json:"operation"`
	Status    string            `gorm:"column:status;type:text;not null" json:"status"`
	Summary   string            `gorm:"column:summary;type:text" json:"summary"`
	Stats     datatypes.JSONMap `gorm:"column:stats" json:"stats"`
	Log       string            `gorm:"column:log;type:text" json:"log"`
	CreatedAt time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (MaintenanceRun) TableName() string {
	return "maintenance_runs"
}
