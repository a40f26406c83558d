// Package harness runs conformance scenarios for SCIM filters.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: arel_mapping
//	description: "Filters translated against the users mapping"
//	mapping: mappings/users.yaml   # optional, relative to the scenario file
//	cases:
//	  - filter: 'userName eq "bjensen"'
//	    valid: true
//	  - filter: 'title pr'
//	    ast:
//	      pr: { path: [title], schema: null, value: null }
//	  - filter: 'userName eq "bjensen"'
//	    sql: "\"users\".\"user_name\" = 'bjensen'"
//	  - filter: 'userName eq'
//	    error: syntax
//
// # Expectations
//
// Each case checks any combination of:
//
//   - valid: whether the filter is grammatically valid
//   - ast: the canonical AST (set groups: true to keep parentheses)
//   - sql: the inline SQL produced through the scenario's mapping
//   - error: the error code of the first failing stage
//
// Error codes are lex, syntax, unmapped_attribute, invalid_mapping_shape and
// nested_filter_unsupported.
//
// # Determinism
//
// Expected and actual ASTs are compared as canonical JSON, so key order in
// the scenario file does not matter and golden snapshots are stable.
package harness
