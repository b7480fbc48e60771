package catalog

import "context"

// Client is the CRS surface a query node calls against the catalog,
// independent of how the call reaches the meta/store node. Wire framing
// (the actual RPC transport) is an explicit non-goal; LocalClient is the
// only implementation this module ships.
type Client interface {
	CreateDatabase(ctx context.Context, plan CreateDatabasePlan) (CreateDatabaseReply, error)
	GetDatabase(ctx context.Context, name string) (DatabaseInfo, error)
	DropDatabase(ctx context.Context, plan DropDatabasePlan) error
	CreateTable(ctx context.Context, plan CreateTablePlan) (CreateTableReply, error)
	DropTable(ctx context.Context, plan DropTablePlan) error
	GetTable(ctx context.Context, db, table string) (TableInfo, error)
	GetTableExt(ctx context.Context, tableID uint64, version *uint64) (TableInfo, error)
	GetDatabases(ctx context.Context) (GetDatabasesReply, error)
	GetTables(ctx context.Context, db string) (GetTablesReply, error)
}

// LocalClient calls a Service in-process, skipping the Envelope wire
// encoding entirely. It exists so a query node colocated with its
// meta/store node (or a test) can use the Client interface without a
// transport. A networked Client would instead marshal each call through
// EncodeEnvelope/DecodeEnvelope over whatever transport it owns.
type LocalClient struct {
	Service *Service
}

func NewLocalClient(svc *Service) *LocalClient {
	return &LocalClient{Service: svc}
}

func (c *LocalClient) CreateDatabase(_ context.Context, plan CreateDatabasePlan) (CreateDatabaseReply, error) {
	return c.Service.CreateDatabase(plan)
}

func (c *LocalClient) GetDatabase(_ context.Context, name string) (DatabaseInfo, error) {
	return c.Service.GetDatabase(name)
}

func (c *LocalClient) DropDatabase(_ context.Context, plan DropDatabasePlan) error {
	return c.Service.DropDatabase(plan)
}

func (c *LocalClient) CreateTable(_ context.Context, plan CreateTablePlan) (CreateTableReply, error) {
	return c.Service.CreateTable(plan)
}

func (c *LocalClient) DropTable(_ context.Context, plan DropTablePlan) error {
	return c.Service.DropTable(plan)
}

func (c *LocalClient) GetTable(_ context.Context, db, table string) (TableInfo, error) {
	return c.Service.GetTable(db, table)
}

func (c *LocalClient) GetTableExt(_ context.Context, tableID uint64, version *uint64) (TableInfo, error) {
	return c.Service.GetTableExt(tableID, version)
}

func (c *LocalClient) GetDatabases(_ context.Context) (GetDatabasesReply, error) {
	return c.Service.GetDatabases()
}

func (c *LocalClient) GetTables(_ context.Context, db string) (GetTablesReply, error) {
	return c.Service.GetTables(db)
}

var _ Client = (*LocalClient)(nil)
