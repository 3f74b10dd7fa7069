package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// QueryTimeout bounds every single statement issued through a store scope.
// Exceeding it surfaces as a statement error and aborts the enclosing
// transaction.
const QueryTimeout = 15 * time.Second

// TxScope is the capability set available inside one acquired transaction.
// The sync core performs all of its relational work through this interface;
// nothing is exposed outside a transaction scope.
type TxScope interface {
	TableExists(name string) bool
	ColumnExists(table string, column string) bool
	Columns(table string) ([]string, error)
	DeleteWhereKeyIn(table string, key string, values []string) error
	BulkInsert(table string, rows []map[string]interface{}) (int64, error)
	Select(table string, filter map[string]interface{}) ([]map[string]interface{}, error)
	Update(table string, filter map[string]interface{}, patch map[string]interface{}) error
	MarkSynced(integrationID uint, at time.Time) error
}

// Store wraps the shared gorm connection pool with scoped transaction
// acquisition.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside a single transaction. A non-nil error from fn
// rolls everything back; otherwise the transaction commits when fn returns.
func (s *Store) Transaction(ctx context.Context, fn func(TxScope) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormScope{tx: tx, ctx: ctx})
	})
}

type gormScope struct {
	tx  *gorm.DB
	ctx context.Context
}

// session returns the transaction handle bound to a per-statement timeout.
func (s *gormScope) session() (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, QueryTimeout)
	return s.tx.WithContext(ctx), cancel
}

func (s *gormScope) TableExists(name string) bool {
	tx, cancel := s.session()
	defer cancel()
	return tx.Migrator().HasTable(name)
}

func (s *gormScope) ColumnExists(table string, column string) bool {
	tx, cancel := s.session()
	defer cancel()
	return tx.Migrator().HasColumn(table, column)
}

func (s *gormScope) Columns(table string) ([]string, error) {
	tx, cancel := s.session()
	defer cancel()
	columnTypes, err := tx.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	columns := make([]string, 0, len(columnTypes))
	for _, columnType := range columnTypes {
		columns = append(columns, columnType.Name())
	}
	return columns, nil
}

func (s *gormScope) DeleteWhereKeyIn(table string, key string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	tx, cancel := s.session()
	defer cancel()
	q := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s IN ?", table, key), values)
	if q.Error != nil {
		return fmt.Errorf("failed to delete from %s by %s: %w", table, key, q.Error)
	}
	return nil
}

func (s *gormScope) BulkInsert(table string, rows []map[string]interface{}) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, cancel := s.session()
	defer cancel()
	q := tx.Table(table).Create(rows)
	if q.Error != nil {
		return 0, fmt.Errorf("failed to bulk insert into %s: %w", table, q.Error)
	}
	return q.RowsAffected, nil
}

func (s *gormScope) Select(table string, filter map[string]interface{}) ([]map[string]interface{}, error) {
	tx, cancel := s.session()
	defer cancel()
	var rows []map[string]interface{}
	q := tx.Table(table)
	if len(filter) > 0 {
		q = q.Where(filter)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}
	return rows, nil
}

func (s *gormScope) Update(table string, filter map[string]interface{}, patch map[string]interface{}) error {
	tx, cancel := s.session()
	defer cancel()
	q := tx.Table(table).Where(filter).Updates(patch)
	if q.Error != nil {
		return fmt.Errorf("failed to update %s: %w", table, q.Error)
	}
	return nil
}

func (s *gormScope) MarkSynced(integrationID uint, at time.Time) error {
	tx, cancel := s.session()
	defer cancel()
	q := tx.Model(&Integration{}).Where("id = ?", integrationID).Update("last_synced_at", at)
	if q.Error != nil {
		return fmt.Errorf("failed to update last sync time: %w", q.Error)
	}
	return nil
}
