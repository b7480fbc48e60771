package plan

// NodeKind tags the variant of a plan tree Node, mirroring the tagged-union
// style of the source's node set.
type NodeKind string

const (
	KindSelect            NodeKind = "Select"
	KindStage             NodeKind = "Stage"
	KindProjection        NodeKind = "Projection"
	KindAggregatorPartial NodeKind = "AggregatorPartial"
	KindAggregatorFinal   NodeKind = "AggregatorFinal"
	KindFilter            NodeKind = "Filter"
	KindSort              NodeKind = "Sort"
	KindLimit             NodeKind = "Limit"
	KindReadSource        NodeKind = "ReadSource"
)

// Node is any plan tree node. Each node holds a reference to its schema, its
// own parameters, and at most one input (Stage is unary, ReadSource is a
// leaf with no input).
type Node interface {
	Kind() NodeKind
	Input() Node
	SchemaOf() *Schema
}

// Select is a pure marker node; the builder skips it.
type Select struct {
	Schema *Schema
	In     Node
}

func (n *Select) Kind() NodeKind  { return KindSelect }
func (n *Select) Input() Node     { return n.In }
func (n *Select) SchemaOf() *Schema { return n.Schema }

// Stage marks a point at which the sub-plan rooted at In may be delegated to
// remote executors.
type Stage struct {
	Schema *Schema
	In     Node
}

func (n *Stage) Kind() NodeKind  { return KindStage }
func (n *Stage) Input() Node     { return n.In }
func (n *Stage) SchemaOf() *Schema { return n.Schema }

// Projection evaluates Exprs against each input row.
type Projection struct {
	Schema *Schema
	In     Node
	Exprs  []Expr
}

func (n *Projection) Kind() NodeKind  { return KindProjection }
func (n *Projection) Input() Node     { return n.In }
func (n *Projection) SchemaOf() *Schema { return n.Schema }

// AggregatorPartial computes partial (pre-merge) aggregates, grouped when
// GroupExpr is non-empty.
type AggregatorPartial struct {
	Schema    *Schema
	In        Node
	GroupExpr []Expr
	AggExprs  []Expr
}

func (n *AggregatorPartial) Kind() NodeKind  { return KindAggregatorPartial }
func (n *AggregatorPartial) Input() Node     { return n.In }
func (n *AggregatorPartial) SchemaOf() *Schema { return n.Schema }

// AggregatorFinal merges partial aggregates into the final result, grouped
// when GroupExpr is non-empty.
type AggregatorFinal struct {
	Schema    *Schema
	In        Node
	GroupExpr []Expr
	AggExprs  []Expr
}

func (n *AggregatorFinal) Kind() NodeKind  { return KindAggregatorFinal }
func (n *AggregatorFinal) Input() Node     { return n.In }
func (n *AggregatorFinal) SchemaOf() *Schema { return n.Schema }

// Filter keeps rows matching Predicate.
type Filter struct {
	Schema    *Schema
	In        Node
	Predicate Expr
}

func (n *Filter) Kind() NodeKind  { return KindFilter }
func (n *Filter) Input() Node     { return n.In }
func (n *Filter) SchemaOf() *Schema { return n.Schema }

// Sort orders rows by OrderBy.
type Sort struct {
	Schema  *Schema
	In      Node
	OrderBy []SortKey
}

func (n *Sort) Kind() NodeKind  { return KindSort }
func (n *Sort) Input() Node     { return n.In }
func (n *Sort) SchemaOf() *Schema { return n.Schema }

// Limit truncates the input stream to at most N rows.
type Limit struct {
	Schema *Schema
	In     Node
	N      uint64
}

func (n *Limit) Kind() NodeKind  { return KindLimit }
func (n *Limit) Input() Node     { return n.In }
func (n *Limit) SchemaOf() *Schema { return n.Schema }

// ReadSource scans Partitions; it is always a leaf.
type ReadSource struct {
	Schema     *Schema
	Partitions []Partition
}

func (n *ReadSource) Kind() NodeKind  { return KindReadSource }
func (n *ReadSource) Input() Node     { return nil }
func (n *ReadSource) SchemaOf() *Schema { return n.Schema }
