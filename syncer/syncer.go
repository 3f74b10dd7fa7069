package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"portalsync/database"
	"portalsync/notion"
)

// NaturalKeyColumn is the relational column holding a row's remote page
// identifier. Tables that predate synchronization may lack it; pulls into
// such tables are insert-only.
const NaturalKeyColumn = "notion_id"

const (
	// DefaultMaxPullRecords bounds the worst-case size of one pull pass.
	// Each pass queries from the first page, so records beyond the cap stay
	// remote until the source shrinks below it; hitting the cap is logged.
	DefaultMaxPullRecords = 500

	// DefaultWriteInterval is the minimum spacing between remote page
	// creations, just above the remote API's per-credential rate limit.
	DefaultWriteInterval = 350 * time.Millisecond
)

var (
	ErrSchemaMismatch       = errors.New("target table does not exist")
	ErrNoDatabaseConfigured = errors.New("integration has no default database configured")
)

// RemoteClient is the capability set the orchestrator needs from the remote
// document workspace. Implemented by *notion.Client.
type RemoteClient interface {
	GetSchema(ctx context.Context, databaseID string) (notion.Schema, error)
	QueryDatabase(ctx context.Context, databaseID string, pageSize int, maxRecords int) ([]notion.Page, error)
	CreatePage(ctx context.Context, databaseID string, properties map[string]notion.PropertyValue) (*notion.Page, error)
}

// Store provides scoped transaction acquisition. Implemented by
// *database.Store.
type Store interface {
	Transaction(ctx context.Context, fn func(database.TxScope) error) error
}

// Result reports one synchronization pass with explicit row counts, never a
// bare pass/fail.
type Result struct {
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
	Err       error  `json:"-"`
}

func failed(attempted int, err error) Result {
	return Result{Attempted: attempted, Failed: attempted, Err: err, Error: err.Error()}
}

// Syncer drives single directional synchronization passes for one
// integration. All collaborators are injected at construction; the zero
// value is not usable.
type Syncer struct {
	store  Store
	client RemoteClient
	log    *logrus.Logger

	// Pacer spaces consecutive remote writes during push passes.
	Pacer Pacer
	// PageSize is the remote query page size (0 uses the client default).
	PageSize int
	// MaxPullRecords caps how many records one pull pass fetches.
	MaxPullRecords int
}

func New(store Store, client RemoteClient, log *logrus.Logger) *Syncer {
	return &Syncer{
		store:          store,
		client:         client,
		log:            log,
		Pacer:          NewIntervalPacer(DefaultWriteInterval),
		MaxPullRecords: DefaultMaxPullRecords,
	}
}

// PullPass copies remote records into the integration's target tables,
// atomically: every store operation including the last-sync timestamp update
// runs inside one transaction, and any failure rolls the whole pass back.
//
// Tables carrying the natural-key column get dedup-by-replacement semantics:
// existing rows whose key appears in the fetched batch are deleted before the
// batch is inserted, so a pull always wins over stale local copies. Tables
// without the column are insert-only and repeated pulls duplicate rows.
func (s *Syncer) PullPass(ctx context.Context, integration *database.Integration) Result {
	settings, err := integration.SyncSettings()
	if err != nil {
		return failed(0, err)
	}
	if settings.DefaultDatabaseID == "" {
		return failed(0, ErrNoDatabaseConfigured)
	}
	if len(settings.TargetTables) == 0 {
		// Nothing configured, nothing to do.
		return Result{}
	}

	var result Result
	err = s.store.Transaction(ctx, func(tx database.TxScope) error {
		for _, table := range settings.TargetTables {
			if !tx.TableExists(table) {
				return fmt.Errorf("%w: %s", ErrSchemaMismatch, table)
			}
		}

		pages, err := s.client.QueryDatabase(ctx, settings.DefaultDatabaseID, s.PageSize, s.MaxPullRecords)
		if err != nil {
			return err
		}
		if s.MaxPullRecords > 0 && len(pages) >= s.MaxPullRecords {
			s.log.WithFields(logrus.Fields{
				"database": settings.DefaultDatabaseID,
				"cap":      s.MaxPullRecords,
			}).Warn("Pull pass hit the record cap, remote records beyond it were not fetched")
		}

		decoded := make([]notion.DecodedPage, len(pages))
		remoteIDs := make([]string, len(pages))
		for i, page := range pages {
			decoded[i] = notion.DecodePage(page)
			remoteIDs[i] = page.ID
		}

		for _, table := range settings.TargetTables {
			columns, err := tx.Columns(table)
			if err != nil {
				return err
			}
			rows := projectRows(decoded, columns)
			result.Attempted += len(rows)

			if tx.ColumnExists(table, NaturalKeyColumn) {
				if err := tx.DeleteWhereKeyIn(table, NaturalKeyColumn, remoteIDs); err != nil {
					return err
				}
			}

			inserted, err := tx.BulkInsert(table, rows)
			if err != nil {
				return err
			}
			result.Succeeded += int(inserted)
		}

		return tx.MarkSynced(integration.ID, time.Now().UTC())
	})
	if err != nil {
		return failed(result.Attempted, err)
	}
	return result
}

// PushPass creates one remote page per source row. It is not transactional
// end-to-end: remote page creations cannot be rolled back, so per-row
// failures are logged and counted while the pass continues with the next
// row. Repeated pushes of the same rows create duplicate remote pages; the
// remote side has no natural-key constraint this pass enforces.
func (s *Syncer) PushPass(ctx context.Context, integration *database.Integration) Result {
	settings, err := integration.SyncSettings()
	if err != nil {
		return failed(0, err)
	}
	if settings.DefaultDatabaseID == "" {
		return failed(0, ErrNoDatabaseConfigured)
	}
	if len(settings.TargetTables) == 0 {
		return Result{}
	}

	// Read-only transaction, committed before the first remote call so no
	// lock is held across network I/O.
	var rows []map[string]interface{}
	err = s.store.Transaction(ctx, func(tx database.TxScope) error {
		for _, table := range settings.TargetTables {
			if !tx.TableExists(table) {
				return fmt.Errorf("%w: %s", ErrSchemaMismatch, table)
			}
			selected, err := tx.Select(table, nil)
			if err != nil {
				return err
			}
			rows = append(rows, selected...)
		}
		return nil
	})
	if err != nil {
		return failed(0, err)
	}

	schema, err := s.client.GetSchema(ctx, settings.DefaultDatabaseID)
	if err != nil {
		return failed(len(rows), err)
	}

	// Computed properties are read-only remotely; drop them from the target
	// schema instead of failing every row on encode.
	writable := make(notion.Schema, len(schema))
	propertyByColumn := make(map[string]string, len(schema))
	for name, declaredType := range schema {
		if !notion.CanEncode(declaredType) {
			s.log.WithFields(logrus.Fields{
				"property": name,
				"type":     declaredType,
			}).Warn("Skipping non-writable schema property")
			continue
		}
		writable[name] = declaredType
		propertyByColumn[columnName(name)] = name
	}

	result := Result{Attempted: len(rows)}
	for i, row := range rows {
		if i > 0 {
			s.Pacer.Wait(ctx)
		}

		mapped := make(map[string]interface{})
		for column, value := range row {
			if property, ok := propertyByColumn[column]; ok {
				mapped[property] = value
			}
		}

		properties, err := notion.EncodeRow(mapped, writable)
		if err != nil {
			result.Failed++
			s.log.WithField("row_id", row["id"]).WithError(err).Error("Failed to encode row")
			continue
		}
		if _, err := s.client.CreatePage(ctx, settings.DefaultDatabaseID, properties); err != nil {
			result.Failed++
			s.log.WithField("row_id", row["id"]).WithError(err).Error("Failed to create remote page")
			continue
		}
		result.Succeeded++
	}

	// The timestamp update is independent of row-level outcomes: a push with
	// failed rows still ran.
	if err := s.store.Transaction(ctx, func(tx database.TxScope) error {
		return tx.MarkSynced(integration.ID, time.Now().UTC())
	}); err != nil {
		result.Err = err
		result.Error = err.Error()
	}
	return result
}

// projectRows flattens decoded pages into rows containing only columns the
// target table actually has. Arrays (multi-choice values) are stored as JSON
// text so both relational backends accept them.
func projectRows(pages []notion.DecodedPage, columns []string) []map[string]interface{} {
	columnSet := make(map[string]bool, len(columns))
	for _, column := range columns {
		columnSet[column] = true
	}

	rows := make([]map[string]interface{}, 0, len(pages))
	for _, page := range pages {
		row := make(map[string]interface{})
		if columnSet[NaturalKeyColumn] {
			row[NaturalKeyColumn] = page.ID
		}
		for name, value := range page.Properties {
			column := columnName(name)
			if !columnSet[column] {
				continue
			}
			if list, ok := value.([]string); ok {
				encoded, err := json.Marshal(list)
				if err != nil {
					continue
				}
				value = string(encoded)
			}
			row[column] = value
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// columnName maps a remote property name to its relational column name
// ("Portal Status" -> "portal_status").
func columnName(property string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(property)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('_')
		}
	}
	return b.String()
}
