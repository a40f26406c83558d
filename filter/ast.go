package filter

import (
	"github.com/sirupsen/logrus"
)

// Node is a filter expression built by ASTBuilder.
//
// This is a sealed interface: Comparison, Not, Logical, Group and Nested are
// the only implementations, so type switches over a Node are exhaustive.
type Node interface {
	filterNode()
}

// Comparison is a leaf such as `userName eq "bjensen"`.
// Value is Absent exactly when Op is OpPresent.
type Comparison struct {
	Op     CompareOp
	Path   AttributePath
	Schema string
	Value  Literal
}

// Not negates its filter.
type Not struct {
	Filter Node
}

// Logical combines two filters with and/or.
//
// Parenthesized is set when the expression was written inside parentheses
// and the builder does not keep Group nodes. It stops an or produced by an
// explicit group from being re-associated by a following and.
type Logical struct {
	Op            LogicalOp
	Left          Node
	Right         Node
	Parenthesized bool
}

// Group is a parenthesized filter, kept only by builders with PreserveGroups.
type Group struct {
	Filter Node
}

// Nested is a bracketed sub-filter over a multi-valued attribute, e.g.
// `emails[type eq "work"]`. Paths inside Filter are relative to Path.
type Nested struct {
	Path   AttributePath
	Schema string
	Filter Node
}

func (*Comparison) filterNode() {}
func (*Not) filterNode()        {}
func (*Logical) filterNode()    {}
func (*Group) filterNode()      {}
func (*Nested) filterNode()     {}

// ASTBuilder is the reference Handler. It folds parse events into Nodes that
// mirror the grammar and can be rendered with Tagged.
//
// With PreserveGroups, parentheses produce Group nodes and `not` drops the
// Group directly beneath it. Without it, parentheses are transparent.
//
// An ASTBuilder holds no per-parse state and is safe for concurrent use.
type ASTBuilder struct {
	PreserveGroups bool

	// Logger receives one debug entry per event. Nil disables logging.
	Logger logrus.FieldLogger
}

var (
	_ Handler[Node]        = (*ASTBuilder)(nil)
	_ GroupedHandler[Node] = (*ASTBuilder)(nil)
)

func (b *ASTBuilder) debug(ctx *Context, event string, fields logrus.Fields) {
	if b.Logger == nil {
		return
	}
	entry := b.Logger.WithFields(fields)
	if ctx != nil && ctx.Value != nil {
		entry = entry.WithField("context", ctx.Value)
	}
	entry.Debug(event)
}

func (b *ASTBuilder) OnAttributeFilter(path AttributePath, op CompareOp, value Literal, schema string, ctx *Context) (Node, error) {
	b.debug(ctx, "attribute filter", logrus.Fields{"path": path.String(), "op": op.String(), "value": value.String(), "schema": schema})
	return &Comparison{Op: op, Path: path, Schema: schema, Value: value}, nil
}

func (b *ASTBuilder) OnNotFilter(inner Node, ctx *Context) (Node, error) {
	b.debug(ctx, "not filter", nil)
	if g, ok := inner.(*Group); ok {
		inner = g.Filter
	}
	return &Not{Filter: inner}, nil
}

// OnLogicalFilter combines left and right. When op is and and left is an or
// that was not written in parentheses, the result is re-associated as
// `a or (b and right)` so that and keeps binding tighter than or.
func (b *ASTBuilder) OnLogicalFilter(left, right Node, op LogicalOp, ctx *Context) (Node, error) {
	b.debug(ctx, "logical filter", logrus.Fields{"op": op.String()})
	if or, ok := left.(*Logical); ok && op == OpAnd && or.Op == OpOr && !or.Parenthesized {
		return &Logical{
			Op:   OpOr,
			Left: or.Left,
			Right: &Logical{
				Op:    OpAnd,
				Left:  or.Right,
				Right: right,
			},
		}, nil
	}
	return &Logical{Op: op, Left: left, Right: right}, nil
}

func (b *ASTBuilder) OnGroupedFilter(inner Node, ctx *Context) (Node, error) {
	b.debug(ctx, "grouped filter", nil)
	if b.PreserveGroups {
		return &Group{Filter: inner}, nil
	}
	if l, ok := inner.(*Logical); ok && !l.Parenthesized {
		marked := *l
		marked.Parenthesized = true
		return &marked, nil
	}
	return inner, nil
}

func (b *ASTBuilder) OnNestedFilter(path AttributePath, schema string, sub Node, ctx *Context) (Node, error) {
	b.debug(ctx, "nested filter", logrus.Fields{"path": path.String(), "schema": schema})
	return &Nested{Path: path, Schema: schema, Filter: sub}, nil
}

// Tagged renders a node as the canonical nested map structure:
//
//	comparison  {"eq": {"path": [...], "schema": ..., "value": ...}}
//	not         {"not": inner}
//	logical     {"and": [left, right]} / {"or": [left, right]}
//	group       {"group": inner}
//	nested      {"path": [...], "schema": ..., "nested": inner}
//
// Absent schemas and values render as nil. When subKey is true, nested
// filters use the key "sub" instead of "nested", matching the output of a
// builder that preserves groups.
func Tagged(n Node, subKey bool) map[string]any {
	switch v := n.(type) {
	case *Comparison:
		return map[string]any{
			v.Op.String(): map[string]any{
				"path":   pathList(v.Path),
				"schema": optional(v.Schema),
				"value":  v.Value.Value,
			},
		}
	case *Not:
		return map[string]any{"not": Tagged(v.Filter, subKey)}
	case *Logical:
		return map[string]any{
			v.Op.String(): []any{Tagged(v.Left, subKey), Tagged(v.Right, subKey)},
		}
	case *Group:
		return map[string]any{"group": Tagged(v.Filter, subKey)}
	case *Nested:
		key := "nested"
		if subKey {
			key = "sub"
		}
		return map[string]any{
			"path":   pathList(v.Path),
			"schema": optional(v.Schema),
			key:      Tagged(v.Filter, subKey),
		}
	default:
		return nil
	}
}

func pathList(p AttributePath) []any {
	out := make([]any, len(p))
	for i, seg := range p {
		out[i] = seg
	}
	return out
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
