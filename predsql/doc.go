// Package predsql renders predicates as SQLite SQL.
//
// Compile produces a parameterized WHERE fragment and its parameters;
// Render produces the same fragment with values inlined, for display:
//
//	"users"."type" = 'Employee' AND ("users"."email" LIKE '%example.com%' OR "users"."email" LIKE '%example.org%')
//
// Rendering rules:
//   - identifiers are always double-quoted
//   - OR is always parenthesized, NOT renders as NOT (...)
//   - eq/ne against null render as IS NULL / IS NOT NULL
//   - predicate.False renders as 1 = 0 and predicate.True as 1 = 1
//   - predicate.Group adds nothing; the parentheses it records only matter
//     while translating
package predsql
