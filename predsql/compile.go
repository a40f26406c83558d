package predsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/scimfilter/predicate"
)

// Compile converts a predicate to a parameterized SQL WHERE fragment for
// SQLite. Values are never interpolated: every value becomes a ? placeholder
// and is returned in params, in order.
func Compile(p predicate.Predicate) (string, []any, error) {
	c := &compiler{}
	if err := c.predicate(p); err != nil {
		return "", nil, err
	}
	return c.sb.String(), c.params, nil
}

// Render converts a predicate to SQL text with values inlined as literals.
// The output is meant for display and tests; use Compile for execution.
func Render(p predicate.Predicate) (string, error) {
	c := &compiler{inline: true}
	if err := c.predicate(p); err != nil {
		return "", err
	}
	return c.sb.String(), nil
}

// Select compiles a full query over table filtered by p. A nil predicate
// selects every row. Rows are ordered by id so results are deterministic.
func Select(table string, p predicate.Predicate) (string, []any, error) {
	sql := "SELECT * FROM " + QuoteIdentifier(table)
	var params []any
	if p != nil {
		where, whereParams, err := Compile(p)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sql += " WHERE " + where
		params = whereParams
	}
	sql += " ORDER BY id ASC"
	return sql, params, nil
}

// QuoteIdentifier quotes a table or column name with double quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

type compiler struct {
	inline bool
	sb     strings.Builder
	params []any
}

func (c *compiler) predicate(p predicate.Predicate) error {
	switch pred := p.(type) {
	case predicate.Comparison:
		return c.comparison(pred)
	case predicate.And:
		return c.binary(pred.Left, " AND ", pred.Right)
	case predicate.Or:
		// OR is always parenthesized so it composes safely under AND and NOT.
		c.sb.WriteByte('(')
		if err := c.binary(pred.Left, " OR ", pred.Right); err != nil {
			return err
		}
		c.sb.WriteByte(')')
		return nil
	case predicate.Not:
		c.sb.WriteString("NOT (")
		if err := c.predicate(pred.Predicate); err != nil {
			return err
		}
		c.sb.WriteByte(')')
		return nil
	case predicate.Group:
		return c.predicate(pred.Predicate)
	case predicate.Constant:
		if pred.Value {
			c.sb.WriteString("1 = 1")
		} else {
			c.sb.WriteString("1 = 0")
		}
		return nil
	case predicate.Raw:
		return c.raw(pred)
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *compiler) binary(left predicate.Predicate, op string, right predicate.Predicate) error {
	if err := c.predicate(left); err != nil {
		return err
	}
	c.sb.WriteString(op)
	return c.predicate(right)
}

func (c *compiler) comparison(cmp predicate.Comparison) error {
	c.column(cmp.Column)
	switch {
	case cmp.Op == predicate.IsNotNull:
		c.sb.WriteString(" IS NOT NULL")
		return nil
	case cmp.Op == predicate.Equal && cmp.Value == nil:
		c.sb.WriteString(" IS NULL")
		return nil
	case cmp.Op == predicate.NotEqual && cmp.Value == nil:
		c.sb.WriteString(" IS NOT NULL")
		return nil
	}
	c.sb.WriteByte(' ')
	c.sb.WriteString(cmp.Op.String())
	c.sb.WriteByte(' ')
	return c.value(cmp.Value)
}

func (c *compiler) column(col predicate.Column) {
	if col.Table != "" {
		c.sb.WriteString(QuoteIdentifier(col.Table))
		c.sb.WriteByte('.')
	}
	c.sb.WriteString(QuoteIdentifier(col.Name))
}

func (c *compiler) value(v any) error {
	if !c.inline {
		param, err := toParam(v)
		if err != nil {
			return err
		}
		c.sb.WriteByte('?')
		c.params = append(c.params, param)
		return nil
	}
	lit, err := Literal(v)
	if err != nil {
		return err
	}
	c.sb.WriteString(lit)
	return nil
}

// raw writes a caller-supplied fragment in parentheses. Inline rendering
// substitutes the arguments for the fragment's placeholders in order.
func (c *compiler) raw(r predicate.Raw) error {
	c.sb.WriteByte('(')
	if !c.inline {
		c.sb.WriteString(r.SQL)
		for _, arg := range r.Args {
			param, err := toParam(arg)
			if err != nil {
				return err
			}
			c.params = append(c.params, param)
		}
		c.sb.WriteByte(')')
		return nil
	}

	args := r.Args
	for i := 0; i < len(r.SQL); i++ {
		if r.SQL[i] != '?' || len(args) == 0 {
			c.sb.WriteByte(r.SQL[i])
			continue
		}
		lit, err := Literal(args[0])
		if err != nil {
			return err
		}
		c.sb.WriteString(lit)
		args = args[1:]
	}
	c.sb.WriteByte(')')
	return nil
}

// Literal renders a value as an SQLite literal.
func Literal(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case bool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	default:
		return "", fmt.Errorf("unsupported SQL value type: %T", v)
	}
}

// toParam checks that v can be bound as an SQLite parameter.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, int64, float64, bool:
		return val, nil
	case int:
		return int64(val), nil
	default:
		return nil, fmt.Errorf("unsupported SQL parameter type: %T", v)
	}
}
