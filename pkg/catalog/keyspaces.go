package catalog

import (
	"encoding/binary"
	"fmt"

	"github.com/latticedb/lattice/pkg/keyspace"
)

// TableVersionKey addresses one immutable table snapshot: (table_id, version).
type TableVersionKey struct {
	TableID uint64
	Version uint64
}

// tableVersionKeyCodec orders first by TableID then by Version, both
// big-endian fixed width, so a range over one table's versions is a single
// contiguous scan.
var tableVersionKeyCodec = keyspace.KeyCodec[TableVersionKey]{
	Encode: func(k TableVersionKey) []byte {
		buf := make([]byte, 16)
		binary.BigEndian.PutUint64(buf[0:8], k.TableID)
		binary.BigEndian.PutUint64(buf[8:16], k.Version)
		return buf
	},
	Decode: func(raw []byte) (TableVersionKey, error) {
		if len(raw) != 16 {
			return TableVersionKey{}, fmt.Errorf("table version key: expected 16 bytes, got %d", len(raw))
		}
		return TableVersionKey{
			TableID: binary.BigEndian.Uint64(raw[0:8]),
			Version: binary.BigEndian.Uint64(raw[8:16]),
		}, nil
	},
}

// TableIndexKey addresses one (database, table name) entry in the
// tables-by-database-and-name index.
type TableIndexKey struct {
	DBID uint64
	Name string
}

// tableIndexKeyCodec prefixes the 8-byte big-endian DBID ahead of the raw
// name bytes: since every encoded key for one database shares the same
// prefix, and no shorter database's prefix is ever a byte-prefix of a
// longer one (the prefix is fixed width), a range bounded by DBRange(id)
// scans exactly that database's tables in name order.
var tableIndexKeyCodec = keyspace.KeyCodec[TableIndexKey]{
	Encode: func(k TableIndexKey) []byte {
		buf := make([]byte, 8+len(k.Name))
		binary.BigEndian.PutUint64(buf[0:8], k.DBID)
		copy(buf[8:], k.Name)
		return buf
	},
	Decode: func(raw []byte) (TableIndexKey, error) {
		if len(raw) < 8 {
			return TableIndexKey{}, fmt.Errorf("table index key: expected at least 8 bytes, got %d", len(raw))
		}
		return TableIndexKey{
			DBID: binary.BigEndian.Uint64(raw[0:8]),
			Name: string(raw[8:]),
		}, nil
	},
}

// databasesByID maps a database's id to its catalog entry.
var databasesByID = keyspace.KeySpace[uint64, DatabaseInfo]{
	Name: "databases_by_id",
	Key:  keyspace.Uint64Key,
	Val:  keyspace.CBORValue[DatabaseInfo](),
}

// databasesByName maps a database's name to its id, the secondary index
// CreateDatabase/GetDatabase/DropDatabase look names up through.
var databasesByName = keyspace.KeySpace[string, uint64]{
	Name: "databases_by_name",
	Key:  keyspace.StringKey,
	Val:  keyspace.CBORValue[uint64](),
}

// tablesByID maps a table's id to its latest catalog entry.
var tablesByID = keyspace.KeySpace[uint64, TableInfo]{
	Name: "tables_by_id",
	Key:  keyspace.Uint64Key,
	Val:  keyspace.CBORValue[TableInfo](),
}

// tableVersions holds every historical snapshot of a table, one entry per
// (table_id, version), so GetTableExt can pin an older version.
var tableVersions = keyspace.KeySpace[TableVersionKey, TableInfo]{
	Name: "table_versions",
	Key:  tableVersionKeyCodec,
	Val:  keyspace.CBORValue[TableInfo](),
}

// tablesByDB indexes (database id, table name) -> table id, letting
// GetTables scan one database's tables without touching tablesByID.
var tablesByDB = keyspace.KeySpace[TableIndexKey, uint64]{
	Name: "tables_by_db",
	Key:  tableIndexKeyCodec,
	Val:  keyspace.CBORValue[uint64](),
}

// idgen holds the next-id counters for databases and tables, keyed by a
// fixed name ("db" or "table") rather than one key space per counter.
var idgen = keyspace.KeySpace[string, uint64]{
	Name: "idgen",
	Key:  keyspace.StringKey,
	Val:  keyspace.CBORValue[uint64](),
}

// DBRange returns the range of tableIndexKeyCodec-encoded keys belonging
// to database dbID: [dbID, dbID+1), since every key for dbID shares the
// fixed-width 8-byte prefix encoding dbID and no key for dbID+1 can sort
// before it.
func DBRange(dbID uint64) keyspace.Range[TableIndexKey] {
	return keyspace.HalfOpen(
		TableIndexKey{DBID: dbID},
		TableIndexKey{DBID: dbID + 1},
	)
}
