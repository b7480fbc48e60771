package catalog

import "github.com/fxamacker/cbor/v2"

// ActionKind tags which CRS action a request/reply Envelope carries. Action
// tag values must be stable once released, per spec §6.
type ActionKind string

const (
	ActionCreateDatabase ActionKind = "CreateDatabase"
	ActionGetDatabase    ActionKind = "GetDatabase"
	ActionDropDatabase   ActionKind = "DropDatabase"
	ActionCreateTable    ActionKind = "CreateTable"
	ActionDropTable      ActionKind = "DropTable"
	ActionGetTable       ActionKind = "GetTable"
	ActionGetTableExt    ActionKind = "GetTableExt"
	ActionGetDatabases   ActionKind = "GetDatabases"
	ActionGetTables      ActionKind = "GetTables"
)

// Envelope is the single "do-action" wire shape: a tagged action naming
// which request/reply pair Payload holds. Encoding is CBOR, a
// length-prefixed self-describing binary format: field additions on either
// side default-initialize on the receiver, satisfying §6's backward
// compatibility requirement.
type Envelope struct {
	Action  ActionKind `cbor:"action"`
	Payload []byte     `cbor:"payload"`
}

// EncodeEnvelope wraps payload under action as a CBOR Envelope.
func EncodeEnvelope[T any](action ActionKind, payload T) ([]byte, error) {
	raw, err := cbor.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(Envelope{Action: action, Payload: raw})
}

// DecodeEnvelope unwraps a CBOR Envelope's payload into T.
func DecodeEnvelope[T any](data []byte) (ActionKind, T, error) {
	var env Envelope
	var zero T
	if err := cbor.Unmarshal(data, &env); err != nil {
		return "", zero, err
	}
	var payload T
	if err := cbor.Unmarshal(env.Payload, &payload); err != nil {
		return env.Action, zero, err
	}
	return env.Action, payload, nil
}

// GetTableExtRequest looks a table up by id, optionally pinned to a
// specific version.
type GetTableExtRequest struct {
	TableID uint64  `cbor:"table_id"`
	Version *uint64 `cbor:"version,omitempty"`
}

// GetTableRequest looks a table up by (database, name).
type GetTableRequest struct {
	DB    string `cbor:"db"`
	Table string `cbor:"table"`
}

// GetDatabaseRequest looks a database up by name.
type GetDatabaseRequest struct {
	Name string `cbor:"name"`
}

// GetTablesRequest lists every table in a database.
type GetTablesRequest struct {
	DB string `cbor:"db"`
}
