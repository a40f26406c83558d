package predicate

import (
	"errors"
	"fmt"

	"github.com/roach88/scimfilter/filter"
)

// ConfigurationErrorKind categorizes mapping problems.
type ConfigurationErrorKind string

const (
	// ErrUnmappedAttribute indicates a path segment missing from the mapping.
	ErrUnmappedAttribute ConfigurationErrorKind = "UNMAPPED_ATTRIBUTE"

	// ErrInvalidMappingShape indicates the path resolved to something that is
	// neither a column nor a resolver.
	ErrInvalidMappingShape ConfigurationErrorKind = "INVALID_MAPPING_SHAPE"
)

// ConfigurationError reports a filter that the attribute mapping cannot
// translate.
type ConfigurationError struct {
	Kind ConfigurationErrorKind
	Path filter.AttributePath
}

func (e *ConfigurationError) Error() string {
	switch e.Kind {
	case ErrUnmappedAttribute:
		return fmt.Sprintf("%s: attribute %q not found in mapping", e.Kind, e.Path.String())
	default:
		return fmt.Sprintf("%s: mapping for attribute %q is not a column or resolver", e.Kind, e.Path.String())
	}
}

// CapabilityErrorKind categorizes filters the translator cannot express.
type CapabilityErrorKind string

const (
	// ErrNestedFilterUnsupported indicates a bracketed filter on an attribute
	// that is not mapped to a resolver.
	ErrNestedFilterUnsupported CapabilityErrorKind = "NESTED_FILTER_UNSUPPORTED"
)

// CapabilityError reports a valid filter the mapping has no way to express.
type CapabilityError struct {
	Kind CapabilityErrorKind
	Path filter.AttributePath
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: nested filters on %q require a resolver mapping", e.Kind, e.Path.String())
}

// IsConfigurationError returns true if err is a ConfigurationError of the
// given kind. Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error, kind ConfigurationErrorKind) bool {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// IsCapabilityError returns true if err is a CapabilityError of the given
// kind. Uses errors.As to handle wrapped errors.
func IsCapabilityError(err error, kind CapabilityErrorKind) bool {
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
