// internal/domain/ledger/entity.go
package ledger

import (
	"fmt"
	"time"
)

// Scope names the base table a set of aggregate entries shadows
type Scope string

const (
	ScopeOrdersByStatus Scope = "orders_by_status"
	ScopeUsersByRole    Scope = "users_by_role"
)

// AggregateEntry is one row of the derived count/sum index. Entries are
// never authoritative: each mirrors exactly one base record and is written
// in the same transaction as that record. The (scope, record_key) unique
// index doubles as the idempotency guard for backfill.
type AggregateEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Scope     Scope     `gorm:"not null;size:50;uniqueIndex:idx_ledger_scope_record,priority:1;index:idx_ledger_scope_partition,priority:1" json:"scope"`
	Partition string    `gorm:"not null;size:50;index:idx_ledger_scope_partition,priority:2" json:"partition"`
	RecordKey string    `gorm:"not null;size:100;uniqueIndex:idx_ledger_scope_record,priority:2" json:"record_key"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (AggregateEntry) TableName() string {
	return "aggregate_entries"
}

// PartitionTotals is the answer shape for grouped count/sum queries
type PartitionTotals struct {
	Partition string `json:"partition"`
	Count     int64  `json:"count"`
	Sum       int64  `json:"sum"`
}

// OrderKey builds the record key for an order entry
func OrderKey(orderID uint) string {
	return fmt.Sprintf("order:%d", orderID)
}

// UserKey builds the record key for a user entry
func UserKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
