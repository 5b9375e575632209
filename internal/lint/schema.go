package lint

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// frontmatterSchema validates each document's frontmatter against a
// compiled JSON Schema. Documents without frontmatter are validated as
// an empty object so required fields are still enforced.
type frontmatterSchema struct {
	name   string
	schema *jsonschema.Schema
}

func loadFrontmatterSchema(path string) (*frontmatterSchema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, err
	}
	return &frontmatterSchema{name: name, schema: schema}, nil
}

func (s *frontmatterSchema) check(all map[string]map[string]interface{}) []Issue {
	paths := make([]string, 0, len(all))
	for p := range all {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var issues []Issue
	for _, p := range paths {
		fm := all[p]
		var doc interface{} = map[string]interface{}{}
		if fm != nil {
			doc = fm
		}
		err := s.schema.Validate(doc)
		if err == nil {
			continue
		}
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			issues = append(issues, Issue{
				Path: p, Line: 1, Rule: RuleFrontmatterSchema, Severity: SeverityError,
				Message: err.Error(),
			})
			continue
		}
		for _, cause := range leafCauses(ve) {
			issues = append(issues, Issue{
				Path: p, Line: 1, Rule: RuleFrontmatterSchema, Severity: SeverityError,
				Message: causeMessage(cause),
			})
		}
	}
	return issues
}

// leafCauses flattens a validation error tree to its most specific
// failures.
func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leafCauses(c)...)
	}
	return out
}

func causeMessage(ve *jsonschema.ValidationError) string {
	loc := strings.TrimPrefix(ve.InstanceLocation, "/")
	if loc == "" {
		return fmt.Sprintf("frontmatter: %s", ve.Message)
	}
	return fmt.Sprintf("frontmatter %s: %s", loc, ve.Message)
}
