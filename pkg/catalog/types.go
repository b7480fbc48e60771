// Package catalog implements the Catalog RPC Surface (CRS): the small set
// of request/reply actions exchanged with the meta/store node, routed
// through the Typed Tree via the KeySpace Codec.
package catalog

import "github.com/latticedb/lattice/pkg/plan"

// DatabaseInfo is one catalog database entry.
type DatabaseInfo struct {
	DBID    uint64            `cbor:"db_id"`
	Name    string            `cbor:"name"`
	Engine  string            `cbor:"engine"`
	Options map[string]string `cbor:"options"`
}

// ToKey projects DatabaseInfo onto its DBID, the value-carries-key
// capability pkg/keyspace uses for append_values/insert_value.
func (d DatabaseInfo) ToKey() uint64 { return d.DBID }

// TableInfo is one catalog table entry. (table_id, version) together
// identify a specific snapshot; Version increments monotonically per table
// on DDL.
type TableInfo struct {
	DBID    uint64            `cbor:"db_id"`
	TableID uint64            `cbor:"table_id"`
	Version uint64            `cbor:"version"`
	Name    string            `cbor:"name"`
	Schema  plan.Schema       `cbor:"schema"`
	Engine  string            `cbor:"engine"`
	Options map[string]string `cbor:"options"`
}

func (t TableInfo) ToKey() uint64 { return t.TableID }

// CreateDatabasePlan is the request payload for CreateDatabase.
type CreateDatabasePlan struct {
	Name        string            `cbor:"name"`
	Engine      string            `cbor:"engine"`
	Options     map[string]string `cbor:"options"`
	IfNotExists bool              `cbor:"if_not_exists"`
}

// DropDatabasePlan is the request payload for DropDatabase.
type DropDatabasePlan struct {
	Name     string `cbor:"name"`
	IfExists bool   `cbor:"if_exists"`
	// Cascade removes the database's tables first instead of failing with
	// DatabaseNotEmpty. Decided in DESIGN.md (spec §9 Open Question).
	Cascade bool `cbor:"cascade"`
}

// CreateTablePlan is the request payload for CreateTable.
type CreateTablePlan struct {
	DB          string            `cbor:"db"`
	Name        string            `cbor:"name"`
	Schema      plan.Schema       `cbor:"schema"`
	Engine      string            `cbor:"engine"`
	Options     map[string]string `cbor:"options"`
	IfNotExists bool              `cbor:"if_not_exists"`
}

// DropTablePlan is the request payload for DropTable.
type DropTablePlan struct {
	DB       string `cbor:"db"`
	Name     string `cbor:"name"`
	IfExists bool   `cbor:"if_exists"`
}

// Replies.

type CreateDatabaseReply struct {
	DBID uint64 `cbor:"db_id"`
}

type CreateTableReply struct {
	TableID uint64 `cbor:"table_id"`
}

type GetDatabasesReply struct {
	Databases []DatabaseInfo `cbor:"databases"`
}

type GetTablesReply struct {
	Tables []TableInfo `cbor:"tables"`
}
