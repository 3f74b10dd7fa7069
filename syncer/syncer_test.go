package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"portalsync/database"
	"portalsync/notion"
)

type fakeRemote struct {
	schema      notion.Schema
	schemaErr   error
	pages       []notion.Page
	queryErr    error
	createErr   map[int]error // 1-based call index -> error
	created     []map[string]notion.PropertyValue
	createCalls int
}

func (f *fakeRemote) GetSchema(ctx context.Context, databaseID string) (notion.Schema, error) {
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schema, nil
}

func (f *fakeRemote) QueryDatabase(ctx context.Context, databaseID string, pageSize int, maxRecords int) ([]notion.Page, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if maxRecords > 0 && len(f.pages) > maxRecords {
		return f.pages[:maxRecords], nil
	}
	return f.pages, nil
}

func (f *fakeRemote) CreatePage(ctx context.Context, databaseID string, properties map[string]notion.PropertyValue) (*notion.Page, error) {
	f.createCalls++
	if err := f.createErr[f.createCalls]; err != nil {
		return nil, err
	}
	f.created = append(f.created, properties)
	return &notion.Page{ID: fmt.Sprintf("page-%d", f.createCalls)}, nil
}

type countingPacer struct {
	calls int
}

func (p *countingPacer) Wait(ctx context.Context) {
	p.calls++
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return database.SetupDatabase("sqlite", filepath.Join(t.TempDir(), "test.db"), false)
}

func newIntegration(t *testing.T, db *gorm.DB, tables []string, databaseID string) *database.Integration {
	t.Helper()
	integration := &database.Integration{
		Name:        "gridiron",
		WorkspaceID: "ws-1",
		Active:      true,
	}
	require.NoError(t, integration.SetSyncSettings(database.SyncSettings{
		DefaultDatabaseID: databaseID,
		TargetTables:      tables,
	}))
	require.NoError(t, db.Create(integration).Error)
	return integration
}

func reload(t *testing.T, db *gorm.DB, id uint) database.Integration {
	t.Helper()
	var integration database.Integration
	require.NoError(t, db.First(&integration, id).Error)
	return integration
}

func playerPage(id, name, position string, stars float64) notion.Page {
	return notion.Page{
		ID: id,
		Properties: map[string]notion.PropertyValue{
			"Name":     {Type: notion.TypeTitle, Title: []notion.RichText{{PlainText: name}}},
			"Position": {Type: notion.TypeSelect, Select: &notion.SelectOption{Name: position}},
			"Stars":    {Type: notion.TypeNumber, Number: &stars},
		},
	}
}

func TestPullPassReplacesStaleRows(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE players (notion_id TEXT, name TEXT, position TEXT, stars REAL)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO players (notion_id, name, position, stars) VALUES ('r1', 'Old Name', 'QB', 3)`).Error)

	integration := newIntegration(t, db, []string{"players"}, "db1")
	remote := &fakeRemote{pages: []notion.Page{
		playerPage("r1", "New Name", "RB", 4),
		playerPage("r2", "Second Player", "WR", 5),
	}}

	s := New(database.NewStore(db), remote, logrus.New())
	result := s.PullPass(context.Background(), integration)

	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	var count int64
	require.NoError(t, db.Table("players").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var rows []map[string]interface{}
	require.NoError(t, db.Table("players").Where("notion_id = ?", "r1").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "New Name", rows[0]["name"])

	assert.NotNil(t, reload(t, db, integration.ID).LastSyncedAt)
}

func TestPullPassMissingTableRollsBack(t *testing.T) {
	db := newTestDB(t)
	integration := newIntegration(t, db, []string{"ghosts"}, "db1")
	remote := &fakeRemote{pages: []notion.Page{playerPage("r1", "Someone", "QB", 4)}}

	s := New(database.NewStore(db), remote, logrus.New())
	result := s.PullPass(context.Background(), integration)

	assert.ErrorIs(t, result.Err, ErrSchemaMismatch)
	assert.Equal(t, 0, result.Succeeded)
	assert.Nil(t, reload(t, db, integration.ID).LastSyncedAt)
}

func TestPullPassNoTablesConfiguredIsNoop(t *testing.T) {
	db := newTestDB(t)
	integration := newIntegration(t, db, nil, "db1")
	remote := &fakeRemote{pages: []notion.Page{playerPage("r1", "Someone", "QB", 4)}}

	s := New(database.NewStore(db), remote, logrus.New())
	result := s.PullPass(context.Background(), integration)

	require.NoError(t, result.Err)
	assert.Equal(t, Result{}, result)
}

func TestPullPassNoDatabaseConfigured(t *testing.T) {
	db := newTestDB(t)
	integration := newIntegration(t, db, []string{"players"}, "")

	s := New(database.NewStore(db), &fakeRemote{}, logrus.New())
	result := s.PullPass(context.Background(), integration)

	assert.ErrorIs(t, result.Err, ErrNoDatabaseConfigured)
}

func TestPullPassWithoutNaturalKeyColumnIsInsertOnly(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE news_items (headline TEXT)`).Error)

	integration := newIntegration(t, db, []string{"news_items"}, "db1")
	remote := &fakeRemote{pages: []notion.Page{{
		ID: "r1",
		Properties: map[string]notion.PropertyValue{
			"Headline": {Type: notion.TypeTitle, Title: []notion.RichText{{PlainText: "Star QB enters portal"}}},
		},
	}}}

	s := New(database.NewStore(db), remote, logrus.New())
	require.NoError(t, s.PullPass(context.Background(), integration).Err)
	require.NoError(t, s.PullPass(context.Background(), integration).Err)

	// no natural key, no delete step: repeated pulls duplicate rows
	var count int64
	require.NoError(t, db.Table("news_items").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestPullPassInsertFailureRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE players (notion_id TEXT, name TEXT, stars REAL NOT NULL)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO players (notion_id, name, stars) VALUES ('r1', 'Old Name', 3)`).Error)

	integration := newIntegration(t, db, []string{"players"}, "db1")

	stars := 4.0
	remote := &fakeRemote{pages: []notion.Page{
		{
			ID: "r1",
			Properties: map[string]notion.PropertyValue{
				"Name":  {Type: notion.TypeTitle, Title: []notion.RichText{{PlainText: "New Name"}}},
				"Stars": {Type: notion.TypeNumber, Number: &stars},
			},
		},
		{
			// null number violates the NOT NULL constraint mid-insert
			ID: "r2",
			Properties: map[string]notion.PropertyValue{
				"Name":  {Type: notion.TypeTitle, Title: []notion.RichText{{PlainText: "Broken"}}},
				"Stars": {Type: notion.TypeNumber, Number: nil},
			},
		},
	}}

	s := New(database.NewStore(db), remote, logrus.New())
	result := s.PullPass(context.Background(), integration)

	require.Error(t, result.Err)
	assert.Equal(t, result.Attempted, result.Failed)

	// full rollback: the stale row survives untouched, nothing partial
	var rows []map[string]interface{}
	require.NoError(t, db.Table("players").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Old Name", rows[0]["name"])
	assert.Nil(t, reload(t, db, integration.ID).LastSyncedAt)
}

func TestPullPassWarnsWhenRecordCapReached(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE players (notion_id TEXT, name TEXT, position TEXT, stars REAL)`).Error)

	integration := newIntegration(t, db, []string{"players"}, "db1")
	remote := &fakeRemote{pages: []notion.Page{
		playerPage("r1", "First", "QB", 4),
		playerPage("r2", "Second", "WR", 5),
		playerPage("r3", "Third", "RB", 3),
	}}

	log, hook := logtest.NewNullLogger()
	s := New(database.NewStore(db), remote, log)
	s.MaxPullRecords = 2

	result := s.PullPass(context.Background(), integration)

	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)

	var count int64
	require.NoError(t, db.Table("players").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// the truncation is visible to the operator
	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["cap"] == 2 {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestPushPassCountsPerRowFailures(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE players (id INTEGER, name TEXT, position TEXT)`).Error)
	for i, name := range []string{"First", "Second", "Third"} {
		require.NoError(t, db.Exec(`INSERT INTO players (id, name, position) VALUES (?, ?, 'QB')`, i+1, name).Error)
	}

	integration := newIntegration(t, db, []string{"players"}, "db1")
	remote := &fakeRemote{
		schema: notion.Schema{
			"Name":     notion.TypeTitle,
			"Position": notion.TypeSelect,
		},
		createErr: map[int]error{2: &notion.APIError{StatusCode: 500, Message: "boom"}},
	}

	s := New(database.NewStore(db), remote, logrus.New())
	pacer := &countingPacer{}
	s.Pacer = pacer

	result := s.PushPass(context.Background(), integration)

	require.NoError(t, result.Err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	// both successful rows exist remotely
	assert.Len(t, remote.created, 2)
	// writes are paced: one wait between each consecutive pair
	assert.Equal(t, 2, pacer.calls)
	// a partial push still updates the last-sync timestamp
	assert.NotNil(t, reload(t, db, integration.ID).LastSyncedAt)
}

func TestPushPassSkipsComputedSchemaProperties(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE players (name TEXT, rating TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO players (name, rating) VALUES ('First', 'elite')`).Error)

	integration := newIntegration(t, db, []string{"players"}, "db1")
	remote := &fakeRemote{
		schema: notion.Schema{
			"Name":   notion.TypeTitle,
			"Rating": notion.TypeFormula, // computed remotely, not writable
		},
	}

	s := New(database.NewStore(db), remote, logrus.New())
	s.Pacer = &countingPacer{}
	result := s.PushPass(context.Background(), integration)

	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, remote.created, 1)
	assert.Contains(t, remote.created[0], "Name")
	assert.NotContains(t, remote.created[0], "Rating")
}

func TestPushPassSchemaFetchFailure(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE players (name TEXT)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO players (name) VALUES ('First')`).Error)

	integration := newIntegration(t, db, []string{"players"}, "db1")
	remote := &fakeRemote{schemaErr: &notion.APIError{StatusCode: 404, Message: "gone"}}

	s := New(database.NewStore(db), remote, logrus.New())
	result := s.PushPass(context.Background(), integration)

	assert.ErrorIs(t, result.Err, notion.ErrNotFound)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Succeeded)
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "portal_status", columnName("Portal Status"))
	assert.Equal(t, "stars", columnName("Stars"))
	assert.Equal(t, "notion_id", columnName("Notion-ID"))
	assert.Equal(t, "name", columnName("  Name  "))
}
