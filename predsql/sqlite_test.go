package predsql_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/predicate"
	"github.com/roach88/scimfilter/predsql"
)

const usersSchema = `
CREATE TABLE users (
	id         INTEGER PRIMARY KEY,
	user_name  TEXT NOT NULL,
	type       TEXT NOT NULL,
	title      TEXT,
	email      TEXT,
	email_type TEXT,
	logins     INTEGER NOT NULL,
	active     BOOLEAN NOT NULL
);
INSERT INTO users VALUES
	(1, 'bjensen', 'Employee',   'Tour Guide', 'bjensen@example.com', 'work', 12, TRUE),
	(2, 'jsmith',  'Intern',     NULL,         'jsmith@example.org',  'home', 3,  TRUE),
	(3, 'mmoe',    'Employee',   NULL,         'mmoe@other.net',      'work', 0,  FALSE),
	(4, 'jdoe',    'Contractor', 'Engineer',   NULL,                  NULL,   7,  TRUE);
`

func openUsers(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// every connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(usersSchema)
	require.NoError(t, err)
	return db
}

func sqliteMapping() predicate.Mapping {
	c := func(name string) predicate.Column { return predicate.Column{Table: "users", Name: name} }
	return predicate.Mapping{
		"userName": c("user_name"),
		"userType": c("type"),
		"title":    c("title"),
		"logins":   c("logins"),
		"active":   c("active"),
		"emails": predicate.Resolver(func(path filter.AttributePath, _ filter.CompareOp, _ filter.Literal) (predicate.Target, error) {
			switch path.String() {
			case "", "value":
				return c("email"), nil
			case "type":
				return c("email_type"), nil
			}
			return nil, nil
		}),
	}
}

func selectIDs(t *testing.T, db *sql.DB, p predicate.Predicate) []int64 {
	t.Helper()

	query, params, err := predsql.Select("users", p)
	require.NoError(t, err)

	rows, err := db.Query(query, params...)
	require.NoError(t, err, "query %s", query)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	ids := []int64{}
	for rows.Next() {
		dest := make([]any, len(cols))
		var id int64
		dest[0] = &id
		for i := 1; i < len(dest); i++ {
			dest[i] = new(any)
		}
		require.NoError(t, rows.Scan(dest...))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestSQLite_FilterSelectsRows(t *testing.T) {
	db := openUsers(t)
	mapping := sqliteMapping()

	tests := []struct {
		filter   string
		expected []int64
	}{
		{`userType eq "Employee"`, []int64{1, 3}},
		{`userType ne "Employee"`, []int64{2, 4}},
		{`title pr`, []int64{1, 4}},
		{`title eq null`, []int64{2, 3}},
		{`userName sw "j"`, []int64{2, 4}},
		{`emails ew ".org"`, []int64{2}},
		{`emails pr`, []int64{1, 2, 3}},
		{`logins gt 3`, []int64{1, 4}},
		{`logins le 3`, []int64{2, 3}},
		{`active eq false`, []int64{3}},
		{`emails[type eq "work" and value co "example"]`, []int64{1}},
		{`userType eq "Employee" and not (emails co "example.com")`, []int64{3}},
		{`title pr and userType eq "Intern" or userName sw "jd"`, []int64{4}},
		{`userType eq "Intern" or userType eq "Contractor" and logins gt 5`, []int64{2, 4}},
		{`(userType eq "Intern" or userType eq "Employee") and logins gt 5`, []int64{1}},
		{`emails[type eq "home" or type eq "work"] and logins lt 5`, []int64{2, 3}},
		{`emails.display pr or userName eq "jsmith"`, []int64{2}},
		{`userName co "'"`, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			p, err := predicate.Translate(tt.filter, mapping)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, selectIDs(t, db, p))
		})
	}
}

func TestSQLite_NilPredicateSelectsAll(t *testing.T) {
	db := openUsers(t)
	assert.Equal(t, []int64{1, 2, 3, 4}, selectIDs(t, db, nil))
}

func TestSQLite_RenderedSQLMatchesCompiled(t *testing.T) {
	db := openUsers(t)

	p, err := predicate.Translate(`userName eq "O'Brien" or emails[type eq "work"] and active eq true`, sqliteMapping())
	require.NoError(t, err)

	where, err := predsql.Render(p)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT id FROM "users" WHERE ` + where + ` ORDER BY id ASC`)
	require.NoError(t, err)
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, selectIDs(t, db, p), ids)
	assert.Equal(t, []int64{1}, ids)
}
