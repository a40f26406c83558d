package predicate

import (
	"sort"
	"strings"

	"github.com/roach88/scimfilter/filter"
)

// Entry is one node of a Mapping: a Column, a Resolver, or a nested Mapping.
//
// This is a sealed interface - only those three types implement it.
type Entry interface {
	mappingEntry()
}

// Mapping maps attribute path segments to columns of the backing store.
//
//	predicate.Mapping{
//	    "userName": predicate.Column{Table: "users", Name: "user_name"},
//	    "name": predicate.Mapping{
//	        "familyName": predicate.Column{Table: "users", Name: "family_name"},
//	    },
//	    "emails": predicate.Resolver(resolveEmail),
//	}
//
// A Mapping is only read during translation and may be shared between
// translators.
type Mapping map[string]Entry

// Resolver translates a comparison below a multi-valued attribute.
//
// path is relative to the attribute the resolver is mapped at: for
// `emails[type eq "work"]` and `emails.type eq "work"` alike a resolver
// mapped at emails sees [type]. Returning a nil Target means no column
// applies, and the leaf matches nothing.
type Resolver func(path filter.AttributePath, op filter.CompareOp, value filter.Literal) (Target, error)

func (Column) mappingEntry()   {}
func (Resolver) mappingEntry() {}
func (Mapping) mappingEntry()  {}

// lookup walks path through the mapping. It stops early at a Resolver and
// returns the segments left over as the resolver's relative path.
//
// Segments match exactly first and then case-insensitively, as SCIM
// attribute names are case-insensitive.
func (m Mapping) lookup(path filter.AttributePath) (Entry, filter.AttributePath, error) {
	var current Entry = m
	for i, segment := range path {
		switch node := current.(type) {
		case Mapping:
			next, ok := node.child(segment)
			if !ok {
				return nil, nil, &ConfigurationError{Kind: ErrUnmappedAttribute, Path: path[:i+1]}
			}
			current = next
		case Resolver:
			return node, path[i:], nil
		default:
			return nil, nil, &ConfigurationError{Kind: ErrUnmappedAttribute, Path: path[:i+1]}
		}
	}
	return current, filter.AttributePath{}, nil
}

func (m Mapping) child(segment string) (Entry, bool) {
	if e, ok := m[segment]; ok {
		return e, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, segment) {
			return m[k], true
		}
	}
	return nil, false
}
