package database

import (
	"gorm.io/gorm"
)

type Migration interface {
	Migrate(*gorm.DB) error
}

type TableMigration struct {
	Model interface{}
}

func (t TableMigration) Migrate(db *gorm.DB) error {
	return db.AutoMigrate(t.Model)
}

// Tabels lists every model this service owns. The scraped data tables
// (players, transfer_portal, ...) are created by the schema migrations of the
// collection agents, not here.
var Tabels []interface{} = []interface{}{
	&Integration{},
}

var Migrations []Migration = []Migration{
	TableMigration{&Integration{}},
}
