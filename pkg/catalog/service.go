package catalog

import (
	"fmt"

	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/keyspace"
	"github.com/latticedb/lattice/pkg/store"
)

// Service implements the nine CRS actions against one Typed Tree. Every
// method is atomic within the one key space it mutates; a multi-key-space
// operation (e.g. DropDatabase with Cascade) is a sequence of such atomic
// steps, not one cross-key-space transaction, per spec §5.
type Service struct {
	tree *store.TypedTree

	databasesByID   store.Handle[uint64, DatabaseInfo]
	databasesByName store.Handle[string, uint64]
	tablesByID      store.Handle[uint64, TableInfo]
	tableVersions   store.Handle[TableVersionKey, TableInfo]
	tablesByDB      store.Handle[TableIndexKey, uint64]
	idgen           store.Handle[string, uint64]
}

// NewService binds a Service to tree, creating its key spaces on demand.
func NewService(tree *store.TypedTree) *Service {
	return &Service{
		tree:            tree,
		databasesByID:   store.For(tree, databasesByID),
		databasesByName: store.For(tree, databasesByName),
		tablesByID:      store.For(tree, tablesByID),
		tableVersions:   store.For(tree, tableVersions),
		tablesByDB:      store.For(tree, tablesByDB),
		idgen:           store.For(tree, idgen),
	}
}

// nextID allocates the next id from counter, starting at 1.
func (s *Service) nextID(counter string) (uint64, error) {
	cur, _, err := s.idgen.Get(counter)
	if err != nil {
		return 0, err
	}
	next := cur + 1
	if _, _, err := s.idgen.Insert(counter, next, false); err != nil {
		return 0, err
	}
	return next, nil
}

// CreateDatabase creates a new database, or returns the existing one's id
// unchanged when IfNotExists is set and the name is already taken.
func (s *Service) CreateDatabase(plan CreateDatabasePlan) (CreateDatabaseReply, error) {
	if id, ok, err := s.databasesByName.Get(plan.Name); err != nil {
		return CreateDatabaseReply{}, err
	} else if ok {
		if plan.IfNotExists {
			return CreateDatabaseReply{DBID: id}, nil
		}
		return CreateDatabaseReply{}, xerrors.ErrDatabaseAlreadyExists(plan.Name)
	}

	id, err := s.nextID("db")
	if err != nil {
		return CreateDatabaseReply{}, err
	}
	info := DatabaseInfo{DBID: id, Name: plan.Name, Engine: plan.Engine, Options: plan.Options}
	if _, _, err := s.databasesByID.Insert(id, info, false); err != nil {
		return CreateDatabaseReply{}, err
	}
	if _, _, err := s.databasesByName.Insert(plan.Name, id, false); err != nil {
		return CreateDatabaseReply{}, err
	}
	return CreateDatabaseReply{DBID: id}, nil
}

// GetDatabase looks a database up by name.
func (s *Service) GetDatabase(name string) (DatabaseInfo, error) {
	id, err := s.resolveDatabase(name)
	if err != nil {
		return DatabaseInfo{}, err
	}
	info, ok, err := s.databasesByID.Get(id)
	if err != nil {
		return DatabaseInfo{}, err
	}
	if !ok {
		return DatabaseInfo{}, xerrors.ErrUnknownDatabase(name)
	}
	return info, nil
}

// DropDatabase removes a database. Without Cascade, a non-empty database
// fails with DatabaseNotEmpty; with Cascade, its tables are dropped first.
// Decided as an Open Question; see DESIGN.md.
func (s *Service) DropDatabase(plan DropDatabasePlan) error {
	id, ok, err := s.databasesByName.Get(plan.Name)
	if err != nil {
		return err
	}
	if !ok {
		if plan.IfExists {
			return nil
		}
		return xerrors.ErrUnknownDatabase(plan.Name)
	}

	tableIDs, err := s.tablesByDB.RangeGet(DBRange(id))
	if err != nil {
		return err
	}
	if len(tableIDs) > 0 {
		if !plan.Cascade {
			return xerrors.ErrDatabaseNotEmpty(plan.Name)
		}
		for _, tableID := range tableIDs {
			if err := s.dropTableByID(id, tableID); err != nil {
				return err
			}
		}
	}

	if _, _, err := s.databasesByName.Remove(plan.Name, false); err != nil {
		return err
	}
	if _, _, err := s.databasesByID.Remove(id, false); err != nil {
		return err
	}
	return nil
}

// CreateTable creates a new table in db, or returns the existing one's id
// unchanged when IfNotExists is set and the name is already taken.
func (s *Service) CreateTable(plan CreateTablePlan) (CreateTableReply, error) {
	dbID, err := s.resolveDatabase(plan.DB)
	if err != nil {
		return CreateTableReply{}, err
	}

	indexKey := TableIndexKey{DBID: dbID, Name: plan.Name}
	if tableID, ok, err := s.tablesByDB.Get(indexKey); err != nil {
		return CreateTableReply{}, err
	} else if ok {
		if plan.IfNotExists {
			return CreateTableReply{TableID: tableID}, nil
		}
		return CreateTableReply{}, xerrors.ErrTableAlreadyExists(plan.DB, plan.Name)
	}

	tableID, err := s.nextID("table")
	if err != nil {
		return CreateTableReply{}, err
	}
	info := TableInfo{
		DBID: dbID, TableID: tableID, Version: 1,
		Name: plan.Name, Schema: plan.Schema, Engine: plan.Engine, Options: plan.Options,
	}
	if _, _, err := s.tablesByID.Insert(tableID, info, false); err != nil {
		return CreateTableReply{}, err
	}
	if _, _, err := s.tableVersions.Insert(TableVersionKey{TableID: tableID, Version: 1}, info, false); err != nil {
		return CreateTableReply{}, err
	}
	if _, _, err := s.tablesByDB.Insert(indexKey, tableID, false); err != nil {
		return CreateTableReply{}, err
	}
	return CreateTableReply{TableID: tableID}, nil
}

// DropTable removes a table from db.
func (s *Service) DropTable(plan DropTablePlan) error {
	dbID, err := s.resolveDatabase(plan.DB)
	if err != nil {
		return err
	}
	indexKey := TableIndexKey{DBID: dbID, Name: plan.Name}
	tableID, ok, err := s.tablesByDB.Get(indexKey)
	if err != nil {
		return err
	}
	if !ok {
		if plan.IfExists {
			return nil
		}
		return xerrors.ErrUnknownTable(plan.DB, plan.Name)
	}
	return s.dropTableByID(dbID, tableID)
}

// dropTableByID removes one table's entries across every key space that
// indexes it, given its already-resolved table id.
func (s *Service) dropTableByID(dbID, tableID uint64) error {
	info, ok, err := s.tablesByID.Get(tableID)
	if err != nil {
		return err
	}
	if ok {
		if err := s.tableVersions.RangeDelete(
			keyspace.Closed(TableVersionKey{TableID: tableID, Version: 0}, TableVersionKey{TableID: tableID, Version: info.Version}),
			false,
		); err != nil {
			return err
		}
		if _, _, err := s.tablesByDB.Remove(TableIndexKey{DBID: dbID, Name: info.Name}, false); err != nil {
			return err
		}
	}
	_, _, err = s.tablesByID.Remove(tableID, false)
	return err
}

// GetTable looks a table up by (database, name), returning its latest
// version.
func (s *Service) GetTable(db, table string) (TableInfo, error) {
	dbID, err := s.resolveDatabase(db)
	if err != nil {
		return TableInfo{}, err
	}
	tableID, ok, err := s.tablesByDB.Get(TableIndexKey{DBID: dbID, Name: table})
	if err != nil {
		return TableInfo{}, err
	}
	if !ok {
		return TableInfo{}, xerrors.ErrUnknownTable(db, table)
	}
	info, ok, err := s.tablesByID.Get(tableID)
	if err != nil {
		return TableInfo{}, err
	}
	if !ok {
		return TableInfo{}, xerrors.ErrUnknownTable(db, table)
	}
	return info, nil
}

// GetTableExt looks a table up by id, pinned to version when non-nil, or
// the latest version when nil. A non-nil version not present among the
// table's snapshots fails with TableVersionMismatch against the table's
// current version.
func (s *Service) GetTableExt(tableID uint64, version *uint64) (TableInfo, error) {
	if version == nil {
		info, ok, err := s.tablesByID.Get(tableID)
		if err != nil {
			return TableInfo{}, err
		}
		if !ok {
			return TableInfo{}, xerrors.ErrUnknownTable("", fmt.Sprintf("table_id=%d", tableID))
		}
		return info, nil
	}

	info, ok, err := s.tableVersions.Get(TableVersionKey{TableID: tableID, Version: *version})
	if err != nil {
		return TableInfo{}, err
	}
	if ok {
		return info, nil
	}

	current, ok, err := s.tablesByID.Get(tableID)
	if err != nil {
		return TableInfo{}, err
	}
	if !ok {
		return TableInfo{}, xerrors.ErrUnknownTable("", fmt.Sprintf("table_id=%d", tableID))
	}
	return TableInfo{}, xerrors.ErrTableVersionMismatch(tableID, *version, current.Version)
}

// GetDatabases lists every database in the catalog.
func (s *Service) GetDatabases() (GetDatabasesReply, error) {
	dbs, err := s.databasesByID.RangeGet(keyspace.All[uint64]())
	if err != nil {
		return GetDatabasesReply{}, err
	}
	return GetDatabasesReply{Databases: dbs}, nil
}

// GetTables lists every table in db.
func (s *Service) GetTables(db string) (GetTablesReply, error) {
	dbID, err := s.resolveDatabase(db)
	if err != nil {
		return GetTablesReply{}, err
	}
	tableIDs, err := s.tablesByDB.RangeGet(DBRange(dbID))
	if err != nil {
		return GetTablesReply{}, err
	}
	tables := make([]TableInfo, 0, len(tableIDs))
	for _, tableID := range tableIDs {
		info, ok, err := s.tablesByID.Get(tableID)
		if err != nil {
			return GetTablesReply{}, err
		}
		if ok {
			tables = append(tables, info)
		}
	}
	return GetTablesReply{Tables: tables}, nil
}

func (s *Service) resolveDatabase(name string) (uint64, error) {
	id, ok, err := s.databasesByName.Get(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, xerrors.ErrUnknownDatabase(name)
	}
	return id, nil
}
