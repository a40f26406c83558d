package predicate_test

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/predicate"
	"github.com/roach88/scimfilter/predsql"
)

func users(name string) predicate.Column {
	return predicate.Column{Table: "users", Name: name}
}

// emailResolver maps the sub-attributes of emails onto two columns of the
// users table. Anything else has no column.
func emailResolver(path filter.AttributePath, _ filter.CompareOp, _ filter.Literal) (predicate.Target, error) {
	switch path.String() {
	case "", "value":
		return users("email"), nil
	case "type":
		return users("email_type"), nil
	default:
		return nil, nil
	}
}

func usersMapping() predicate.Mapping {
	return predicate.Mapping{
		"foo":      users("foo"),
		"userType": users("type"),
		"userName": users("user_name"),
		"name": predicate.Mapping{
			"familyName": users("family_name"),
		},
		"title": users("title3"),
		"meta": predicate.Mapping{
			"lastModified": users("last_modified"),
		},
		"schemas": users("schemas"),
		"emails":  predicate.Resolver(emailResolver),
		"w":       users("w"),
		"x":       users("x"),
		"y":       users("y"),
		"z":       users("z"),
	}
}

func translateSQL(t *testing.T, input string, mapping predicate.Mapping) string {
	t.Helper()
	p, err := predicate.Translate(input, mapping)
	require.NoError(t, err, "translating %q", input)
	sql, err := predsql.Render(p)
	require.NoError(t, err)
	return sql
}

func TestTranslate_SQL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "equal",
			input:    `userName eq "bjensen"`,
			expected: `"users"."user_name" = 'bjensen'`,
		},
		{
			name:     "contains with quote",
			input:    `name.familyName co "O'Malley"`,
			expected: `"users"."family_name" LIKE '%O''Malley%'`,
		},
		{
			name:     "starts with",
			input:    `userName sw "J"`,
			expected: `"users"."user_name" LIKE 'J%'`,
		},
		{
			name:     "ends with",
			input:    `userName ew "sen"`,
			expected: `"users"."user_name" LIKE '%sen'`,
		},
		{
			name:     "present",
			input:    `title pr`,
			expected: `"users"."title3" IS NOT NULL`,
		},
		{
			name:     "greater than",
			input:    `meta.lastModified gt "2011-05-13T04:42:34Z"`,
			expected: `"users"."last_modified" > '2011-05-13T04:42:34Z'`,
		},
		{
			name:     "greater or equal",
			input:    `meta.lastModified ge "2011-05-13T04:42:34Z"`,
			expected: `"users"."last_modified" >= '2011-05-13T04:42:34Z'`,
		},
		{
			name:     "less than",
			input:    `meta.lastModified lt "2011-05-13T04:42:34Z"`,
			expected: `"users"."last_modified" < '2011-05-13T04:42:34Z'`,
		},
		{
			name:     "less or equal",
			input:    `meta.lastModified le "2011-05-13T04:42:34Z"`,
			expected: `"users"."last_modified" <= '2011-05-13T04:42:34Z'`,
		},
		{
			name:     "not equal",
			input:    `userType ne "Employee"`,
			expected: `"users"."type" != 'Employee'`,
		},
		{
			name:     "and",
			input:    `title pr and userType eq "Employee"`,
			expected: `"users"."title3" IS NOT NULL AND "users"."type" = 'Employee'`,
		},
		{
			name:     "or",
			input:    `title pr or userType eq "Intern"`,
			expected: `("users"."title3" IS NOT NULL OR "users"."type" = 'Intern')`,
		},
		{
			name:     "schemas",
			input:    `schemas eq "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"`,
			expected: `"users"."schemas" = 'urn:ietf:params:scim:schemas:extension:enterprise:2.0:User'`,
		},
		{
			name:     "schema urn prefix",
			input:    `urn:ietf:params:scim:schemas:core:2.0:User:userName sw "J"`,
			expected: `"users"."user_name" LIKE 'J%'`,
		},
		{
			name:     "grouped or under and",
			input:    `userType eq "Employee" and (emails co "example.com" or emails.value co "example.org")`,
			expected: `"users"."type" = 'Employee' AND ("users"."email" LIKE '%example.com%' OR "users"."email" LIKE '%example.org%')`,
		},
		{
			name:     "not grouped or",
			input:    `userType ne "Employee" and not (emails co "example.com" or emails.value co "example.org")`,
			expected: `"users"."type" != 'Employee' AND NOT (("users"."email" LIKE '%example.com%' OR "users"."email" LIKE '%example.org%'))`,
		},
		{
			name:     "nested filter",
			input:    `userType eq "Employee" and emails[type eq "work" and value co "@example.com"]`,
			expected: `"users"."type" = 'Employee' AND "users"."email_type" = 'work' AND "users"."email" LIKE '%@example.com%'`,
		},
		{
			name:     "nested filter alone",
			input:    `emails[type eq "work" and value ew "@example.com"]`,
			expected: `"users"."email_type" = 'work' AND "users"."email" LIKE '%@example.com'`,
		},
		{
			name:     "and binds tighter than or",
			input:    `w pr and x pr or y pr and z pr`,
			expected: `("users"."w" IS NOT NULL AND "users"."x" IS NOT NULL OR "users"."y" IS NOT NULL AND "users"."z" IS NOT NULL)`,
		},
		{
			name:     "parenthesized or in the middle",
			input:    `w pr and (x pr or y pr) and z pr`,
			expected: `"users"."w" IS NOT NULL AND ("users"."x" IS NOT NULL OR "users"."y" IS NOT NULL) AND "users"."z" IS NOT NULL`,
		},
		{
			name:     "parenthesized or first",
			input:    `(w pr or x pr) and y pr`,
			expected: `("users"."w" IS NOT NULL OR "users"."x" IS NOT NULL) AND "users"."y" IS NOT NULL`,
		},
		{
			name:     "eq null",
			input:    `foo eq null`,
			expected: `"users"."foo" IS NULL`,
		},
		{
			name:     "ne null",
			input:    `foo ne null`,
			expected: `"users"."foo" IS NOT NULL`,
		},
		{
			name:     "integer",
			input:    `foo eq 42`,
			expected: `"users"."foo" = 42`,
		},
		{
			name:     "decimal",
			input:    `foo gt 1.5`,
			expected: `"users"."foo" > 1.5`,
		},
		{
			name:     "boolean",
			input:    `foo eq true`,
			expected: `"users"."foo" = TRUE`,
		},
		{
			name:     "case-insensitive attribute",
			input:    `USERNAME eq "x" and Name.FamilyName pr`,
			expected: `"users"."user_name" = 'x' AND "users"."family_name" IS NOT NULL`,
		},
	}

	mapping := usersMapping()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, translateSQL(t, tt.input, mapping))
		})
	}
}

func TestTranslate_UnresolvedLeafIsFalse(t *testing.T) {
	mapping := usersMapping()

	assert.Equal(t, `1 = 0 AND "users"."foo" IS NOT NULL`,
		translateSQL(t, `emails.display eq "x" and foo pr`, mapping))

	assert.Equal(t, `"users"."email_type" = 'work' AND 1 = 0`,
		translateSQL(t, `emails[type eq "work" and primary eq true]`, mapping))

	p, err := predicate.Translate(`emails.display pr`, mapping)
	require.NoError(t, err)
	assert.Equal(t, predicate.False, p)
}

func TestTranslate_NestedOrIsEnclosed(t *testing.T) {
	mapping := usersMapping()

	p, err := predicate.Translate(`emails[type eq "work" or type eq "home"] and foo pr`, mapping)
	require.NoError(t, err)

	assert.Equal(t, predicate.And{
		Left: predicate.Group{Predicate: predicate.Or{
			Left:  predicate.Comparison{Column: users("email_type"), Op: predicate.Equal, Value: "work"},
			Right: predicate.Comparison{Column: users("email_type"), Op: predicate.Equal, Value: "home"},
		}},
		Right: predicate.Comparison{Column: users("foo"), Op: predicate.IsNotNull},
	}, p)

	sql, err := predsql.Render(p)
	require.NoError(t, err)
	assert.Equal(t, `("users"."email_type" = 'work' OR "users"."email_type" = 'home') AND "users"."foo" IS NOT NULL`, sql)
}

func TestTranslate_PrecedenceInsideBrackets(t *testing.T) {
	mapping := usersMapping()

	assert.Equal(t,
		`("users"."email_type" = 'work' OR "users"."email_type" = 'home' AND "users"."email" LIKE '%x%')`,
		translateSQL(t, `emails[type eq "work" or type eq "home" and value co "x"]`, mapping))

	assert.Equal(t,
		`("users"."email_type" = 'work' OR "users"."email_type" = 'home') AND "users"."email" LIKE '%x%'`,
		translateSQL(t, `emails[(type eq "work" or type eq "home") and value co "x"]`, mapping))

	assert.Equal(t,
		`NOT ("users"."email_type" = 'work')`,
		translateSQL(t, `emails[not (type eq "work")]`, mapping))
}

func TestTranslate_ResolverPredicateOrIsEnclosed(t *testing.T) {
	phones := func(path filter.AttributePath, op filter.CompareOp, v filter.Literal) (predicate.Target, error) {
		return predicate.Or{
			Left:  predicate.Comparison{Column: users("mobile"), Op: predicate.Equal, Value: v.Value},
			Right: predicate.Comparison{Column: users("home_phone"), Op: predicate.Equal, Value: v.Value},
		}, nil
	}
	mapping := usersMapping()
	mapping["phoneNumbers"] = predicate.Resolver(phones)

	assert.Equal(t,
		`("users"."mobile" = '555' OR "users"."home_phone" = '555') AND "users"."foo" IS NOT NULL`,
		translateSQL(t, `phoneNumbers eq "555" and foo pr`, mapping))
}

func TestTranslate_ResolverSeesRelativePath(t *testing.T) {
	var seen []string
	record := func(path filter.AttributePath, op filter.CompareOp, v filter.Literal) (predicate.Target, error) {
		seen = append(seen, path.String()+" "+op.String())
		return users("c"), nil
	}
	mapping := predicate.Mapping{
		"enterprise": predicate.Mapping{
			"manager": predicate.Resolver(record),
		},
	}

	_, err := predicate.Translate(`enterprise.manager.displayName pr and enterprise.manager[value eq "x" or displayName sw "B"]`, mapping)
	require.NoError(t, err)
	assert.Equal(t, []string{"displayName pr", "value eq", "displayName sw"}, seen)
}

func TestTranslate_ResolverErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	mapping := predicate.Mapping{
		"emails": predicate.Resolver(func(filter.AttributePath, filter.CompareOp, filter.Literal) (predicate.Target, error) {
			return nil, boom
		}),
	}

	_, err := predicate.Translate(`emails pr`, mapping)
	assert.ErrorIs(t, err, boom)

	_, err = predicate.Translate(`emails[type eq "work"]`, mapping)
	assert.ErrorIs(t, err, boom)
}

func TestTranslate_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  predicate.ConfigurationErrorKind
		path  filter.AttributePath
	}{
		{"unknown attribute", `unknown eq 1`, predicate.ErrUnmappedAttribute, filter.AttributePath{"unknown"}},
		{"unknown sub-attribute", `name.givenName eq "x"`, predicate.ErrUnmappedAttribute, filter.AttributePath{"name", "givenName"}},
		{"path below a column", `userName.first eq "x"`, predicate.ErrUnmappedAttribute, filter.AttributePath{"userName", "first"}},
		{"sub-mapping used as a leaf", `name pr`, predicate.ErrInvalidMappingShape, filter.AttributePath{"name"}},
		{"unknown nested attribute", `ims[type eq "xmpp"]`, predicate.ErrUnmappedAttribute, filter.AttributePath{"ims"}},
		{"error on the right side", `userName pr or meta.created pr`, predicate.ErrUnmappedAttribute, filter.AttributePath{"meta", "created"}},
	}

	mapping := usersMapping()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := predicate.Translate(tt.input, mapping)
			require.Error(t, err)
			assert.True(t, predicate.IsConfigurationError(err, tt.kind), "got %v", err)

			var ce *predicate.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.path, ce.Path)
		})
	}
}

func TestTranslate_NilResolverIsInvalidShape(t *testing.T) {
	mapping := predicate.Mapping{"x": predicate.Resolver(nil)}

	_, err := predicate.Translate(`x pr`, mapping)
	assert.True(t, predicate.IsConfigurationError(err, predicate.ErrInvalidMappingShape))

	_, err = predicate.Translate(`x[a pr]`, mapping)
	var ce *predicate.CapabilityError
	assert.ErrorAs(t, err, &ce)
}

func TestTranslate_CapabilityErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  filter.AttributePath
	}{
		{"brackets on a sub-mapping", `name[familyName eq "x"]`, filter.AttributePath{"name"}},
		{"brackets on a column", `userName[value eq "x"]`, filter.AttributePath{"userName"}},
		{"brackets inside brackets", `emails[value eq "x" and ims[type eq "y"]]`, filter.AttributePath{"emails", "ims"}},
	}

	mapping := usersMapping()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := predicate.Translate(tt.input, mapping)
			require.Error(t, err)

			var ce *predicate.CapabilityError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, predicate.ErrNestedFilterUnsupported, ce.Kind)
			assert.Equal(t, tt.path, ce.Path)
			assert.Contains(t, err.Error(), "NESTED_FILTER_UNSUPPORTED")
		})
	}
}

func TestTranslate_ParseErrorsPassThrough(t *testing.T) {
	mapping := usersMapping()

	_, err := predicate.Translate(`userName eq "x`, mapping)
	assert.True(t, filter.IsLexError(err))

	_, err = predicate.Translate(`userName eq`, mapping)
	assert.True(t, filter.IsSyntaxError(err))

	_, err = predicate.Translate(`userName eq "x" and`, mapping)
	assert.True(t, filter.IsSyntaxError(err))

	// leaves are translated as soon as they are read
	_, err = predicate.Translate(`unknown eq "x" and`, mapping)
	assert.True(t, predicate.IsConfigurationError(err, predicate.ErrUnmappedAttribute))
}

func TestTranslator_Idempotent(t *testing.T) {
	tr := predicate.NewTranslator(usersMapping())
	p := filter.NewParser[predicate.Predicate](tr)

	input := `userType eq "Employee" and emails[type eq "work" or value co "@example.com"] or title pr`
	first, err := p.Parse(input)
	require.NoError(t, err)
	second, err := p.Parse(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTranslator_ReusableAfterFailedParse(t *testing.T) {
	tr := predicate.NewTranslator(usersMapping())
	p := filter.NewParser[predicate.Predicate](tr)

	// fails with the bracket still open
	_, err := p.Parse(`emails[type eq "work"`)
	require.Error(t, err)

	got, err := p.Parse(`foo pr`)
	require.NoError(t, err)
	assert.Equal(t, predicate.Comparison{Column: users("foo"), Op: predicate.IsNotNull}, got)
}

func TestTranslator_DebugLogging(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := predicate.Translate(`userName eq "x" and emails[type eq "work"]`, usersMapping(), predicate.WithLogger(logger))
	require.NoError(t, err)

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Equal(t, []string{"translate attribute", "attribute filter", "translate nested filter"}, messages)
	assert.Equal(t, "userName", hook.AllEntries()[0].Data["path"])
	assert.Equal(t, "emails", hook.LastEntry().Data["path"])
}

func TestColumn_String(t *testing.T) {
	assert.Equal(t, "users.email", users("email").String())
	assert.Equal(t, "email", predicate.Column{Name: "email"}.String())
}

func TestOperator_String(t *testing.T) {
	assert.Equal(t, "=", predicate.Equal.String())
	assert.Equal(t, "!=", predicate.NotEqual.String())
	assert.Equal(t, "LIKE", predicate.Like.String())
	assert.Equal(t, "IS NOT NULL", predicate.IsNotNull.String())
	assert.Equal(t, "Operator(42)", predicate.Operator(42).String())
}
