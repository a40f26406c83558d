// Package predicate translates SCIM filters into boolean predicates over the
// columns of a relational store.
//
// The caller describes where attributes live with a Mapping. Leaves are
// either static Columns or Resolvers; a Resolver is needed wherever one
// column cannot represent every sub-attribute, which is always the case for
// bracketed filters such as `emails[type eq "work" and value ew "@x.org"]`.
//
//	mapping := predicate.Mapping{
//	    "userName": predicate.Column{Table: "users", Name: "user_name"},
//	    "emails": predicate.Resolver(func(path filter.AttributePath, op filter.CompareOp, v filter.Literal) (predicate.Target, error) {
//	        switch path.String() {
//	        case "type":
//	            return predicate.Column{Table: "emails", Name: "type"}, nil
//	        case "value":
//	            return predicate.Column{Table: "emails", Name: "address"}, nil
//	        }
//	        return nil, nil // no column: the leaf becomes False
//	    }),
//	}
//	p, err := predicate.Translate(`userName sw "J"`, mapping)
//
// Errors:
//   - *ConfigurationError: attribute missing from the mapping, or mapped to
//     something that is neither a column nor a resolver
//   - *CapabilityError: bracketed filter on an attribute without a resolver
//   - *filter.LexError, *filter.SyntaxError from the parser, unchanged
//
// Predicates are plain values; package predsql renders them as SQL.
package predicate
