package predicate

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/roach88/scimfilter/filter"
)

// Translator is a filter.Handler that turns a filter into a Predicate using
// an attribute Mapping.
//
// Bracketed filters are collected as filter Nodes while they are parsed and
// resolved once the closing bracket is reached, because their paths are
// relative to the bracketed attribute and only its Resolver can map them.
//
// A Translator keeps that collector between callbacks, so it must not be
// used by two parses at the same time. Translate creates one per call.
type Translator struct {
	mapping Mapping
	logger  logrus.FieldLogger

	// nested is non-nil while a bracketed filter is being parsed.
	nested *nestedCollector
}

// nestedCollector gathers the contents of one bracketed filter.
type nestedCollector struct {
	ctx     *filter.Context
	path    filter.AttributePath
	builder filter.ASTBuilder
}

// collected carries a filter Node through the parser in place of a
// Predicate while a bracketed filter is open. It never leaves the package.
type collected struct {
	node filter.Node
}

func (collected) target()        {}
func (collected) predicateNode() {}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

var (
	_ filter.Handler[Predicate]        = (*Translator)(nil)
	_ filter.GroupedHandler[Predicate] = (*Translator)(nil)
	_ filter.NestedScopeHandler        = (*Translator)(nil)
)

// NewTranslator creates a translator for mapping.
func NewTranslator(mapping Mapping, opts ...Option) *Translator {
	t := &Translator{mapping: mapping}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate parses input and translates it against mapping with a fresh
// Translator.
func Translate(input string, mapping Mapping, opts ...Option) (Predicate, error) {
	return filter.NewParser[Predicate](NewTranslator(mapping, opts...)).Parse(input)
}

// active returns the collector of the bracketed filter open in this parse.
// A collector left behind by an earlier, failed parse is discarded.
func (t *Translator) active(ctx *filter.Context) *nestedCollector {
	if t.nested != nil && t.nested.ctx != ctx {
		t.nested = nil
	}
	return t.nested
}

func (t *Translator) debug(msg string, fields logrus.Fields) {
	if t.logger != nil {
		t.logger.WithFields(fields).Debug(msg)
	}
}

func (t *Translator) OnAttributeFilter(path filter.AttributePath, op filter.CompareOp, value filter.Literal, schema string, ctx *filter.Context) (Predicate, error) {
	if c := t.active(ctx); c != nil {
		n, err := c.builder.OnAttributeFilter(path, op, value, schema, ctx)
		return collected{node: n}, err
	}

	entry, rest, err := t.mapping.lookup(path)
	if err != nil {
		return nil, err
	}
	t.debug("translate attribute", logrus.Fields{"path": path.String(), "op": op.String()})

	switch e := entry.(type) {
	case Column:
		return applyOperator(e, op, value)
	case Resolver:
		if e == nil {
			break
		}
		target, err := e(rest, op, value)
		if err != nil {
			return nil, err
		}
		pred, err := resolveTarget(target, op, value, path)
		if err != nil {
			return nil, err
		}
		return enclose(pred), nil
	}
	return nil, &ConfigurationError{Kind: ErrInvalidMappingShape, Path: path}
}

func (t *Translator) OnNotFilter(inner Predicate, ctx *filter.Context) (Predicate, error) {
	if c := t.active(ctx); c != nil {
		n, err := c.builder.OnNotFilter(nodeOf(inner), ctx)
		return collected{node: n}, err
	}
	return Not{Predicate: inner}, nil
}

// OnLogicalFilter combines two predicates, re-associating `(a or b) and c`
// into `a or (b and c)` when the or was not parenthesized, exactly as
// filter.ASTBuilder does.
func (t *Translator) OnLogicalFilter(left, right Predicate, op filter.LogicalOp, ctx *filter.Context) (Predicate, error) {
	if c := t.active(ctx); c != nil {
		n, err := c.builder.OnLogicalFilter(nodeOf(left), nodeOf(right), op, ctx)
		return collected{node: n}, err
	}
	switch op {
	case filter.OpAnd:
		if or, ok := left.(Or); ok {
			return Or{Left: or.Left, Right: And{Left: or.Right, Right: right}}, nil
		}
		return And{Left: left, Right: right}, nil
	case filter.OpOr:
		return Or{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unsupported logical operator %s", op)
	}
}

func (t *Translator) OnGroupedFilter(inner Predicate, ctx *filter.Context) (Predicate, error) {
	if c := t.active(ctx); c != nil {
		n, err := c.builder.OnGroupedFilter(nodeOf(inner), ctx)
		return collected{node: n}, err
	}
	return Group{Predicate: inner}, nil
}

// EnterNestedFilter starts collecting a bracketed filter. Brackets inside
// brackets cannot be resolved and fail immediately.
func (t *Translator) EnterNestedFilter(path filter.AttributePath, schema string, ctx *filter.Context) error {
	if c := t.active(ctx); c != nil {
		full := append(append(filter.AttributePath{}, c.path...), path...)
		return &CapabilityError{Kind: ErrNestedFilterUnsupported, Path: full}
	}
	t.nested = &nestedCollector{
		ctx:     ctx,
		path:    path,
		builder: filter.ASTBuilder{Logger: t.logger},
	}
	return nil
}

// OnNestedFilter resolves a collected bracketed filter. The bracketed
// attribute must be mapped to a Resolver; static columns cannot tell the
// sub-attributes inside the brackets apart.
func (t *Translator) OnNestedFilter(path filter.AttributePath, schema string, sub Predicate, ctx *filter.Context) (Predicate, error) {
	t.active(ctx)
	t.nested = nil

	c, ok := sub.(collected)
	if !ok {
		return nil, &CapabilityError{Kind: ErrNestedFilterUnsupported, Path: path}
	}

	entry, rest, err := t.mapping.lookup(path)
	if err != nil {
		return nil, err
	}
	resolver, ok := entry.(Resolver)
	if !ok || resolver == nil {
		return nil, &CapabilityError{Kind: ErrNestedFilterUnsupported, Path: path}
	}
	t.debug("translate nested filter", logrus.Fields{"path": path.String()})
	pred, err := walkNested(resolver, rest, c.node)
	if err != nil {
		return nil, err
	}
	return enclose(pred), nil
}

// enclose groups an Or that did not come from the top-level fold, such as
// one built from brackets or returned by a resolver, so that a following
// and does not re-associate it.
func enclose(p Predicate) Predicate {
	if or, ok := p.(Or); ok {
		return Group{Predicate: or}
	}
	return p
}

// walkNested translates a bracketed filter leaf by leaf through resolver.
// prefix holds any path segments between the resolver and the brackets.
func walkNested(resolver Resolver, prefix filter.AttributePath, n filter.Node) (Predicate, error) {
	switch node := n.(type) {
	case *filter.Comparison:
		leaf := append(append(filter.AttributePath{}, prefix...), node.Path...)
		target, err := resolver(leaf, node.Op, node.Value)
		if err != nil {
			return nil, err
		}
		return resolveTarget(target, node.Op, node.Value, leaf)
	case *filter.Not:
		inner, err := walkNested(resolver, prefix, node.Filter)
		if err != nil {
			return nil, err
		}
		return Not{Predicate: inner}, nil
	case *filter.Logical:
		left, err := walkNested(resolver, prefix, node.Left)
		if err != nil {
			return nil, err
		}
		right, err := walkNested(resolver, prefix, node.Right)
		if err != nil {
			return nil, err
		}
		if node.Op == filter.OpAnd {
			return And{Left: left, Right: right}, nil
		}
		return Or{Left: left, Right: right}, nil
	case *filter.Group:
		return walkNested(resolver, prefix, node.Filter)
	case *filter.Nested:
		return nil, &CapabilityError{Kind: ErrNestedFilterUnsupported, Path: node.Path}
	default:
		return nil, fmt.Errorf("unsupported filter node %T", n)
	}
}

// resolveTarget turns a resolver result into a predicate. A nil result
// degrades to False so the enclosing expression still composes.
func resolveTarget(target Target, op filter.CompareOp, value filter.Literal, path filter.AttributePath) (Predicate, error) {
	switch t := target.(type) {
	case nil:
		return False, nil
	case Column:
		return applyOperator(t, op, value)
	case Predicate:
		return t, nil
	default:
		return nil, &ConfigurationError{Kind: ErrInvalidMappingShape, Path: path}
	}
}

// applyOperator builds the comparison of column against value for op.
func applyOperator(column Column, op filter.CompareOp, value filter.Literal) (Predicate, error) {
	v := value.Value
	switch op {
	case filter.OpEqual:
		return Comparison{Column: column, Op: Equal, Value: v}, nil
	case filter.OpNotEqual:
		return Comparison{Column: column, Op: NotEqual, Value: v}, nil
	case filter.OpContains:
		return Comparison{Column: column, Op: Like, Value: "%" + likeText(v) + "%"}, nil
	case filter.OpStartsWith:
		return Comparison{Column: column, Op: Like, Value: likeText(v) + "%"}, nil
	case filter.OpEndsWith:
		return Comparison{Column: column, Op: Like, Value: "%" + likeText(v)}, nil
	case filter.OpGreaterThan:
		return Comparison{Column: column, Op: GreaterThan, Value: v}, nil
	case filter.OpGreaterOrEqual:
		return Comparison{Column: column, Op: GreaterOrEqual, Value: v}, nil
	case filter.OpLessThan:
		return Comparison{Column: column, Op: LessThan, Value: v}, nil
	case filter.OpLessOrEqual:
		return Comparison{Column: column, Op: LessOrEqual, Value: v}, nil
	case filter.OpPresent:
		return Comparison{Column: column, Op: IsNotNull}, nil
	default:
		return nil, fmt.Errorf("unsupported comparison operator %s", op)
	}
}

func likeText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func nodeOf(p Predicate) filter.Node {
	if c, ok := p.(collected); ok {
		return c.node
	}
	return nil
}
