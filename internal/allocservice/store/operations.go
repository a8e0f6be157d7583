package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marmos91/stackhaus/internal/allocservice/models"
	"github.com/marmos91/stackhaus/internal/stackerr"
	"github.com/marmos91/stackhaus/internal/telemetry"
)

// MaxPreloadReplicas is the clamp applied to every pre_load request.
const MaxPreloadReplicas = 5

// NextStackID atomically increments the "next_stack_id" counter and
// returns the pre-increment value. The identifier it returns is never
// reused, even across process restarts, because the counter is
// durable.
func (s *Store) NextStackID(ctx context.Context) (uint64, error) {
	var next uint64

	err := s.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg models.Config
		err := tx.Clauses().Where("key = ?", "next_stack_id").First(&cfg).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			cfg = models.Config{Key: "next_stack_id", Value: 0}
			if err := tx.Create(&cfg).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		next = cfg.Value
		return tx.Model(&models.Config{}).Where("key = ?", "next_stack_id").
			Update("value", cfg.Value+1).Error
	})
	if err != nil {
		return 0, stackerr.Wrap(stackerr.IOError, err, "increment next_stack_id counter")
	}
	return next, nil
}

// RegisterStackSource upserts the stack's source document, unioning
// locations into its deduplicated locations array.
func (s *Store) RegisterStackSource(ctx context.Context, stackID uint64, locations []string) error {
	return s.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StackSource
		err := tx.Where("stack_id = ?", stackID).First(&existing).Error

		var current []string
		switch {
		case err == gorm.ErrRecordNotFound:
			current = nil
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(existing.Locations), &current); err != nil {
				return err
			}
		}

		merged := unionStrings(current, locations)
		encoded, err := json.Marshal(merged)
		if err != nil {
			return err
		}

		return tx.Save(&models.StackSource{StackID: stackID, Locations: string(encoded)}).Error
	})
}

// DeRegisterStackSource removes the given locations from the stack's
// source document.
func (s *Store) DeRegisterStackSource(ctx context.Context, stackID uint64, locations []string) error {
	return s.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StackSource
		err := tx.Where("stack_id = ?", stackID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		var current []string
		if err := json.Unmarshal([]byte(existing.Locations), &current); err != nil {
			return err
		}

		remaining := subtractStrings(current, locations)
		encoded, err := json.Marshal(remaining)
		if err != nil {
			return err
		}

		return tx.Model(&existing).Update("locations", string(encoded)).Error
	})
}

// QueryRegisteredSource returns the stack's registered locations, or a
// stackerr.IOError-kind not-found error if no document exists for it.
func (s *Store) QueryRegisteredSource(ctx context.Context, stackID uint64) ([]string, error) {
	var existing models.StackSource
	err := s.ctx(ctx).Where("stack_id = ?", stackID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, stackerr.Newf(stackerr.IOError, "no registered source for stack %d", stackID)
	}
	if err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "query stack source")
	}

	var locations []string
	if err := json.Unmarshal([]byte(existing.Locations), &locations); err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "decode stack source locations")
	}
	return locations, nil
}

// LocateStack returns every preload assignment for stackID.
func (s *Store) LocateStack(ctx context.Context, stackID uint64) ([]models.PreloadAssignment, error) {
	var assignments []models.PreloadAssignment
	if err := s.ctx(ctx).Where("stack_id = ?", stackID).Find(&assignments).Error; err != nil {
		return nil, stackerr.Wrap(stackerr.IOError, err, "locate stack")
	}
	return assignments, nil
}

// PreLoad reconciles the number of non-Deleting preload assignments for
// stackID toward min(replicas, MaxPreloadReplicas), retrying on
// transient transaction failures.
func (s *Store) PreLoad(ctx context.Context, stackID uint64, replicas int) (result []models.PreloadAssignment, err error) {
	ctx, span := telemetry.StartAllocSpan(ctx, telemetry.SpanAllocPreload, telemetry.StackID(stackID), telemetry.Replicas(replicas))
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		if s.metrics != nil {
			s.metrics.ObserveReconciliation(time.Since(start), err)
		}
	}()

	target := replicas
	if target > MaxPreloadReplicas {
		target = MaxPreloadReplicas
	}
	if target < 0 {
		target = 0
	}

	const maxCommitRetries = 100
	for attempt := 0; ; attempt++ {
		result, err = s.reconcileOnce(ctx, stackID, target)
		if err == nil {
			return result, nil
		}
		if !isTransientTxnError(err) {
			return nil, stackerr.Wrap(stackerr.ControllerError, err, "preload reconciliation")
		}
		if attempt >= maxCommitRetries {
			return nil, stackerr.Wrap(stackerr.ControllerError, err, "preload reconciliation exhausted retries")
		}
	}
}

// reconcileOnce runs steps 1-6 of the reconciliation algorithm inside a
// single transaction.
func (s *Store) reconcileOnce(ctx context.Context, stackID uint64, target int) ([]models.PreloadAssignment, error) {
	var result []models.PreloadAssignment

	err := s.ctx(ctx).Transaction(func(tx *gorm.DB) error {
		var active []models.PreloadAssignment
		if err := tx.Where("stack_id = ? AND state <> ?", stackID, models.PreloadDeleting).
			Find(&active).Error; err != nil {
			return err
		}
		current := len(active)

		if current == target {
			result = active
			return nil
		}

		now := time.Now()
		if current > 0 {
			ids := make([]string, len(active))
			for i, a := range active {
				ids[i] = a.ID
			}
			if err := tx.Model(&models.PreloadAssignment{}).Where("id IN ?", ids).
				Update("update_timestamp", now).Error; err != nil {
				return err
			}
		}

		switch {
		case current < target:
			for i := 0; i < target-current; i++ {
				entry := models.PreloadAssignment{
					ID:              uuid.NewString(),
					StackID:         stackID,
					State:           models.PreloadInit,
					CreatedAt:       now,
					UpdateTimestamp: now,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
				active = append(active, entry)
			}
		case current > target:
			toDelete := active[:current-target]
			active = active[current-target:]
			for _, a := range toDelete {
				if err := tx.Delete(&models.PreloadAssignment{}, "id = ?", a.ID).Error; err != nil {
					return err
				}
			}
		}

		result = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnPreLoad marks every preload assignment for stackID as Deleting.
func (s *Store) UnPreLoad(ctx context.Context, stackID uint64) error {
	err := s.ctx(ctx).Model(&models.PreloadAssignment{}).
		Where("stack_id = ? AND state <> ?", stackID, models.PreloadDeleting).
		Update("state", models.PreloadDeleting).Error
	if err != nil {
		return stackerr.Wrap(stackerr.IOError, err, "un_pre_load")
	}
	return nil
}

// UpdateAssignmentState sets assignmentID's lifecycle state, the
// transition the preload worker fleet drives as it copies a stack's
// bytes to its preload target (Init -> Loading -> Loaded).
func (s *Store) UpdateAssignmentState(ctx context.Context, assignmentID string, state models.PreloadState) error {
	ctx, span := telemetry.StartAllocSpan(ctx, telemetry.SpanAllocTransition,
		telemetry.AssignmentID(assignmentID), telemetry.State(string(state)))
	defer span.End()

	res := s.ctx(ctx).Model(&models.PreloadAssignment{}).
		Where("id = ?", assignmentID).
		Updates(map[string]any{"state": state, "update_timestamp": time.Now()})
	if res.Error != nil {
		err := stackerr.Wrap(stackerr.IOError, res.Error, "update preload assignment state")
		telemetry.RecordError(ctx, err)
		return err
	}
	if res.RowsAffected == 0 {
		err := stackerr.Newf(stackerr.IOError, "no preload assignment %q", assignmentID)
		telemetry.RecordError(ctx, err)
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordAssignmentTransition(string(state))
	}
	return nil
}

// isTransientTxnError reports whether err is the kind of commit failure
// the allocation service should retry: lock contention and timeouts
// surfaced by SQLite's busy_timeout and Postgres' serialization checks.
func isTransientTxnError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "could not serialize access") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func subtractStrings(a, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, s := range remove {
		drop[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := drop[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
