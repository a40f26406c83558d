package predicate

import "fmt"

// Target is what a Resolver hands back for a leaf comparison: either a
// Column the comparison operator should be applied to, or a complete
// Predicate that is used as-is. A nil Target means no column applies.
//
// This is a sealed interface - only types in this package implement it.
type Target interface {
	target()
}

// Predicate is a boolean expression over table columns.
//
// This is a sealed interface - only types in this package implement it.
// Predicate types:
//   - Comparison: column <op> value
//   - And, Or, Not: logical composition
//   - Group: an explicitly parenthesized predicate
//   - Constant: literal true/false
//   - Raw: a caller-built SQL fragment with its own parameters
type Predicate interface {
	Target
	predicateNode()
}

// Column identifies a column of the backing store. Table may be empty.
type Column struct {
	Table string
	Name  string
}

func (c Column) String() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// Operator is a relational comparison.
type Operator int

const (
	Equal Operator = iota
	NotEqual
	Like
	GreaterThan
	GreaterOrEqual
	LessThan
	LessOrEqual
	IsNotNull
)

var operatorSymbols = [...]string{
	Equal:          "=",
	NotEqual:       "!=",
	Like:           "LIKE",
	GreaterThan:    ">",
	GreaterOrEqual: ">=",
	LessThan:       "<",
	LessOrEqual:    "<=",
	IsNotNull:      "IS NOT NULL",
}

// String returns the SQL spelling of the operator.
func (op Operator) String() string {
	if op >= 0 && int(op) < len(operatorSymbols) {
		return operatorSymbols[op]
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Comparison compares a column to a value. IsNotNull ignores Value; Equal
// and NotEqual with a nil Value mean IS NULL and IS NOT NULL.
type Comparison struct {
	Column Column
	Op     Operator
	Value  any
}

// And is true when both sides are.
type And struct {
	Left  Predicate
	Right Predicate
}

// Or is true when either side is.
type Or struct {
	Left  Predicate
	Right Predicate
}

// Not negates Predicate.
type Not struct {
	Predicate Predicate
}

// Group marks a predicate written in parentheses. It has no effect on
// evaluation.
type Group struct {
	Predicate Predicate
}

// Constant is a literal truth value.
type Constant struct {
	Value bool
}

// Raw is an opaque SQL fragment, for resolvers that need something the
// other predicates cannot express (subqueries, functions). Args bind to the
// fragment's ? placeholders in order.
type Raw struct {
	SQL  string
	Args []any
}

var (
	// True matches every row.
	True = Constant{Value: true}

	// False matches no row. Leaves whose resolver finds no column become False.
	False = Constant{Value: false}
)

func (Column) target() {}

func (Comparison) target() {}
func (And) target()        {}
func (Or) target()         {}
func (Not) target()        {}
func (Group) target()      {}
func (Constant) target()   {}
func (Raw) target()        {}

func (Comparison) predicateNode() {}
func (And) predicateNode()        {}
func (Or) predicateNode()         {}
func (Not) predicateNode()        {}
func (Group) predicateNode()      {}
func (Constant) predicateNode()   {}
func (Raw) predicateNode()        {}
