// Package models defines the GORM-mapped documents the allocation
// service persists: the monotonic stack_id counter, stack-source
// bindings, and preload assignments.
package models

import "time"

// Config holds a single scalar configuration value, keyed by name. The
// "next_stack_id" row is the monotonic counter incremented by
// NextStackID.
type Config struct {
	Key   string `gorm:"primaryKey"`
	Value uint64
}

func (Config) TableName() string { return "config" }

// StackSource records which object-store locations a stack's three
// sibling objects live under.
type StackSource struct {
	StackID   uint64 `gorm:"primaryKey"`
	Locations string `gorm:"type:text"` // JSON-encoded []string, deduplicated on write
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (StackSource) TableName() string { return "stack_sources" }

// PreloadState is the lifecycle state of a PreloadAssignment.
type PreloadState string

const (
	PreloadInit     PreloadState = "Init"
	PreloadLoading  PreloadState = "Loading"
	PreloadLoaded   PreloadState = "Loaded"
	PreloadDeleting PreloadState = "Deleting"
)

// PreloadAssignment is one replica of a stack preloaded onto a worker.
// State transitions beyond Init are driven by the preload worker fleet,
// not by the allocation service itself.
type PreloadAssignment struct {
	ID              string `gorm:"primaryKey"`
	StackID         uint64 `gorm:"index"`
	State           PreloadState
	CreatedAt       time.Time
	UpdateTimestamp time.Time
}

func (PreloadAssignment) TableName() string { return "preload_assignments" }

// AllModels returns every model for AutoMigrate, mirroring the
// teacher's models.AllModels() convention.
func AllModels() []any {
	return []any{
		&Config{},
		&StackSource{},
		&PreloadAssignment{},
	}
}
