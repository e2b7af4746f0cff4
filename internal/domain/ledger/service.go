// internal/domain/ledger/service.go
package ledger

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service maintains the derived count/sum index. Mutating operations take
// the caller's transaction handle: a ledger write outside the transaction
// that changes the base record would open a drift window.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new ledger service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// Insert adds the ledger entry for a newly created base record
func (s *Service) Insert(tx *gorm.DB, scope Scope, partition, recordKey string, value int64) error {
	entry := AggregateEntry{
		Scope:     scope,
		Partition: partition,
		RecordKey: recordKey,
		Value:     value,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to insert ledger entry %s/%s: %w", scope, recordKey, err)
	}
	return nil
}

// Replace moves a record between partitions (or updates its value) as a
// single row update. A delete+insert pair would leave a window where the
// record is counted in neither or both partitions.
func (s *Service) Replace(tx *gorm.DB, scope Scope, recordKey, newPartition string, newValue int64) error {
	result := tx.Model(&AggregateEntry{}).
		Where("scope = ? AND record_key = ?", scope, recordKey).
		Updates(map[string]interface{}{
			"partition": newPartition,
			"value":     newValue,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to replace ledger entry %s/%s: %w", scope, recordKey, result.Error)
	}

	// A missing entry means the ledger drifted (e.g. the record predates the
	// ledger). Repair by inserting rather than failing the mutation.
	if result.RowsAffected == 0 {
		s.logger.WithFields(logrus.Fields{
			"scope":      scope,
			"record_key": recordKey,
		}).Warn("ledger entry missing on replace, inserting")
		return s.Insert(tx, scope, newPartition, recordKey, newValue)
	}
	return nil
}

// Delete removes the ledger entry for a deleted base record
func (s *Service) Delete(tx *gorm.DB, scope Scope, recordKey string) error {
	result := tx.Where("scope = ? AND record_key = ?", scope, recordKey).Delete(&AggregateEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ledger entry %s/%s: %w", scope, recordKey, result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.WithFields(logrus.Fields{
			"scope":      scope,
			"record_key": recordKey,
		}).Warn("ledger entry missing on delete")
	}
	return nil
}

// Count answers a partition count from the index alone
func (s *Service) Count(scope Scope, partition string) (int64, error) {
	var count int64
	err := s.db.Model(&AggregateEntry{}).
		Where("scope = ? AND partition = ?", scope, partition).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger partition %s/%s: %w", scope, partition, err)
	}
	return count, nil
}

// Sum answers a partition sum from the index alone
func (s *Service) Sum(scope Scope, partition string) (int64, error) {
	var sum *int64
	err := s.db.Model(&AggregateEntry{}).
		Select("SUM(value)").
		Where("scope = ? AND partition = ?", scope, partition).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger partition %s/%s: %w", scope, partition, err)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// Totals returns count and sum for every partition of a scope
func (s *Service) Totals(scope Scope) ([]PartitionTotals, error) {
	var totals []PartitionTotals
	err := s.db.Model(&AggregateEntry{}).
		Select("partition, COUNT(*) AS count, COALESCE(SUM(value), 0) AS sum").
		Where("scope = ?", scope).
		Group("partition").
		Order("partition").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger scope %s: %w", scope, err)
	}
	return totals, nil
}

// BackfillResult summarizes a reconciliation run
type BackfillResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Backfill reconciles the ledger from the base tables. It is an
// administrative bootstrap/recovery operation: every existing base record is
// re-inserted and per-record "already exists" conflicts are skipped, so a
// re-run over a partially populated ledger completes instead of aborting.
func (s *Service) Backfill() (*BackfillResult, error) {
	result := &BackfillResult{}

	var orderRows []struct {
		ID          uint
		Status      string
		TotalAmount int64
	}
	if err := s.db.Table("orders").
		Select("id, status, total_amount").
		Where("deleted_at IS NULL").
		Order("created_at").
		Scan(&orderRows).Error; err != nil {
		return nil, fmt.Errorf("failed to read orders for backfill: %w", err)
	}

	for _, row := range orderRows {
		s.backfillEntry(result, ScopeOrdersByStatus, row.Status, OrderKey(row.ID), row.TotalAmount)
	}

	var userRows []struct {
		ID   uint
		Role string
	}
	if err := s.db.Table("users").
		Select("id, role").
		Where("deleted_at IS NULL").
		Order("created_at").
		Scan(&userRows).Error; err != nil {
		return nil, fmt.Errorf("failed to read users for backfill: %w", err)
	}

	for _, row := range userRows {
		s.backfillEntry(result, ScopeUsersByRole, row.Role, UserKey(row.ID), 1)
	}

	s.logger.WithFields(logrus.Fields{
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
	}).Info("ledger backfill completed")

	return result, nil
}

// backfillEntry inserts one entry, treating a unique-key conflict as a skip
func (s *Service) backfillEntry(result *BackfillResult, scope Scope, partition, recordKey string, value int64) {
	entry := AggregateEntry{
		Scope:     scope,
		Partition: partition,
		RecordKey: recordKey,
		Value:     value,
	}

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "record_key"}},
		DoNothing: true,
	}).Create(&entry)

	if res.Error != nil {
		// Tolerated per record: drift during backfill is logged, not fatal
		s.logger.WithError(res.Error).WithFields(logrus.Fields{
			"scope":      scope,
			"record_key": recordKey,
		}).Warn("failed to backfill ledger entry, skipping")
		result.Skipped++
		return
	}

	if res.RowsAffected == 0 {
		result.Skipped++
		return
	}
	result.Inserted++
}
