// Package mappingfile loads attribute mappings from YAML or CUE documents.
//
// A document names a default table and maps SCIM attributes to columns:
//
//	table: users
//	attributes:
//	  userName: user_name          # column of the default table
//	  manager: managers.name       # table-qualified column
//	  name:
//	    familyName: family_name    # sub-attribute
//	  emails:
//	    resolver:                  # multi-valued attribute
//	      type: email_type
//	      value: email
//
// A resolver block maps the sub-attributes usable inside brackets
// (`emails[type eq "work"]`) and after a dot (`emails.type eq "work"`).
// Sub-attributes missing from the block translate to false.
package mappingfile

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/scimfilter/filter"
	"github.com/roach88/scimfilter/predicate"
)

//go:embed schema.cue
var schemaCUE string

// Document is the decoded form of a mapping file.
type Document struct {
	Table      string         `yaml:"table" json:"table"`
	Attributes map[string]any `yaml:"attributes" json:"attributes"`
}

// Result is a loaded mapping.
type Result struct {
	Table   string
	Mapping predicate.Mapping
}

var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Load reads a mapping file. The format is chosen by extension: .yaml and
// .yml are YAML, .cue is CUE.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var doc *Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		doc, err = DecodeYAML(data)
	case ".cue":
		doc, err = DecodeCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported mapping file extension %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// DecodeYAML decodes a YAML mapping document, rejecting unknown top-level
// fields.
func DecodeYAML(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &doc, nil
}

// DecodeCUE evaluates a CUE mapping document against the embedded schema.
func DecodeCUE(data []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling mapping schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %s", cueerrors.Details(err, nil))
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid mapping: %s", cueerrors.Details(err, nil))
	}

	var doc Document
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding CUE mapping: %w", err)
	}
	return &doc, nil
}

// Build converts a decoded document into a predicate.Mapping.
func Build(doc *Document) (*Result, error) {
	if len(doc.Attributes) == 0 {
		return nil, fmt.Errorf("attributes is required and must be non-empty")
	}
	m, err := buildMapping(doc.Table, doc.Attributes, "")
	if err != nil {
		return nil, err
	}
	return &Result{Table: doc.Table, Mapping: m}, nil
}

func buildMapping(table string, attrs map[string]any, parent string) (predicate.Mapping, error) {
	m := make(predicate.Mapping, len(attrs))
	for name, raw := range attrs {
		at := name
		if parent != "" {
			at = parent + "." + name
		}
		entry, err := buildEntry(table, raw, at)
		if err != nil {
			return nil, err
		}
		m[name] = entry
	}
	return m, nil
}

func buildEntry(table string, raw any, at string) (predicate.Entry, error) {
	switch v := raw.(type) {
	case string:
		col, err := parseColumn(table, v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", at, err)
		}
		return col, nil
	case map[string]any:
		if block, ok := v["resolver"]; ok && len(v) == 1 {
			r, err := buildResolver(table, block)
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", at, err)
			}
			return r, nil
		}
		if len(v) == 0 {
			return nil, fmt.Errorf("attribute %s: empty mapping", at)
		}
		return buildMapping(table, v, at)
	default:
		return nil, fmt.Errorf("attribute %s: expected a column name or a mapping, got %T", at, raw)
	}
}

func parseColumn(table, ref string) (predicate.Column, error) {
	if !columnPattern.MatchString(ref) {
		return predicate.Column{}, fmt.Errorf("invalid column %q", ref)
	}
	if t, name, ok := strings.Cut(ref, "."); ok {
		return predicate.Column{Table: t, Name: name}, nil
	}
	return predicate.Column{Table: table, Name: ref}, nil
}

// buildResolver turns a resolver block into a predicate.Resolver over its
// sub-attributes. An empty relative path means the attribute itself, which
// SCIM treats as its value sub-attribute.
func buildResolver(table string, block any) (predicate.Resolver, error) {
	entries, ok := block.(map[string]any)
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("resolver must map sub-attributes to columns")
	}

	columns := make(map[string]predicate.Column, len(entries))
	for sub, raw := range entries {
		ref, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("resolver sub-attribute %s: expected a column name, got %T", sub, raw)
		}
		col, err := parseColumn(table, ref)
		if err != nil {
			return nil, fmt.Errorf("resolver sub-attribute %s: %w", sub, err)
		}
		columns[strings.ToLower(sub)] = col
	}

	return func(path filter.AttributePath, _ filter.CompareOp, _ filter.Literal) (predicate.Target, error) {
		sub := "value"
		switch len(path) {
		case 0:
		case 1:
			sub = path[0]
		default:
			return nil, nil
		}
		if col, ok := columns[strings.ToLower(sub)]; ok {
			return col, nil
		}
		return nil, nil
	}, nil
}
