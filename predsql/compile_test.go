package predsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scimfilter/predicate"
)

func col(name string) predicate.Column {
	return predicate.Column{Table: "users", Name: name}
}

func eq(name string, v any) predicate.Comparison {
	return predicate.Comparison{Column: col(name), Op: predicate.Equal, Value: v}
}

func TestCompile_Parameterized(t *testing.T) {
	p := predicate.And{
		Left:  eq("user_name", "bjensen"),
		Right: predicate.Comparison{Column: col("logins"), Op: predicate.GreaterThan, Value: int64(3)},
	}

	sql, params, err := Compile(p)
	require.NoError(t, err)

	assert.Equal(t, `"users"."user_name" = ? AND "users"."logins" > ?`, sql)
	assert.NotContains(t, sql, "bjensen")
	assert.Equal(t, []any{"bjensen", int64(3)}, params)
}

func TestCompile_NullsAndPresenceTakeNoParams(t *testing.T) {
	p := predicate.Or{
		Left: eq("title", nil),
		Right: predicate.Or{
			Left:  predicate.Comparison{Column: col("title"), Op: predicate.NotEqual, Value: nil},
			Right: predicate.Comparison{Column: col("title"), Op: predicate.IsNotNull},
		},
	}

	sql, params, err := Compile(p)
	require.NoError(t, err)
	assert.Equal(t, `("users"."title" IS NULL OR ("users"."title" IS NOT NULL OR "users"."title" IS NOT NULL))`, sql)
	assert.Empty(t, params)
}

func TestCompile_IntParamsBecomeInt64(t *testing.T) {
	_, params, err := Compile(eq("n", 7))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7)}, params)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    predicate.Predicate
		msg  string
	}{
		{"nil predicate", predicate.And{Left: eq("a", 1), Right: nil}, "unsupported predicate type: <nil>"},
		{"unsupported value", eq("a", []int{1}), "unsupported SQL parameter type: []int"},
		{"unsupported raw arg", predicate.Raw{SQL: "f(?)", Args: []any{struct{}{}}}, "unsupported SQL parameter type: struct {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(tt.p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		p        predicate.Predicate
		expected string
	}{
		{
			name:     "string with quote",
			p:        eq("family_name", "O'Malley"),
			expected: `"users"."family_name" = 'O''Malley'`,
		},
		{
			name:     "column without table",
			p:        predicate.Comparison{Column: predicate.Column{Name: "age"}, Op: predicate.LessOrEqual, Value: 2.5},
			expected: `"age" <= 2.5`,
		},
		{
			name:     "not",
			p:        predicate.Not{Predicate: eq("active", true)},
			expected: `NOT ("users"."active" = TRUE)`,
		},
		{
			name:     "group is transparent",
			p:        predicate.Group{Predicate: eq("a", int64(1))},
			expected: `"users"."a" = 1`,
		},
		{
			name:     "constants",
			p:        predicate.And{Left: predicate.True, Right: predicate.False},
			expected: `1 = 1 AND 1 = 0`,
		},
		{
			name:     "like",
			p:        predicate.Comparison{Column: col("email"), Op: predicate.Like, Value: "%@example.com"},
			expected: `"users"."email" LIKE '%@example.com'`,
		},
		{
			name:     "quoted identifier",
			p:        predicate.Comparison{Column: predicate.Column{Table: `we"ird`, Name: "c"}, Op: predicate.IsNotNull},
			expected: `"we""ird"."c" IS NOT NULL`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := Render(tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sql)
		})
	}
}

func TestRaw(t *testing.T) {
	raw := predicate.Raw{
		SQL:  `EXISTS (SELECT 1 FROM "emails" WHERE "emails"."user_id" = "users"."id" AND "emails"."type" = ?)`,
		Args: []any{"work"},
	}
	p := predicate.And{Left: eq("active", true), Right: raw}

	sql, params, err := Compile(p)
	require.NoError(t, err)
	assert.Equal(t, `"users"."active" = ? AND (EXISTS (SELECT 1 FROM "emails" WHERE "emails"."user_id" = "users"."id" AND "emails"."type" = ?))`, sql)
	assert.Equal(t, []any{true, "work"}, params)

	rendered, err := Render(p)
	require.NoError(t, err)
	assert.Equal(t, `"users"."active" = TRUE AND (EXISTS (SELECT 1 FROM "emails" WHERE "emails"."user_id" = "users"."id" AND "emails"."type" = 'work'))`, rendered)
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "NULL"},
		{"plain", "'plain'"},
		{"it's", "'it''s'"},
		{int64(-5), "-5"},
		{42, "42"},
		{2.5, "2.5"},
		{1e21, "1e+21"},
		{true, "TRUE"},
		{false, "FALSE"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got, err := Literal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := Literal(map[string]any{})
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	sql, params, err := Select("users", eq("user_name", "bjensen"))
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" WHERE "users"."user_name" = ? ORDER BY id ASC`, sql)
	assert.Equal(t, []any{"bjensen"}, params)

	sql, params, err = Select("users", nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" ORDER BY id ASC`, sql)
	assert.Nil(t, params)

	_, _, err = Select("users", eq("a", []string{"x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile filter")
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"users"`, QuoteIdentifier("users"))
	assert.Equal(t, `"a""b"`, QuoteIdentifier(`a"b`))
}
