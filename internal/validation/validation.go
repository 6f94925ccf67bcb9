// Package validation evaluates per-operation rule tables against request input.
//
// A table is plain data: an ordered list of fields, each with an ordered list
// of rules. Evaluation follows three conventions:
//   - blank strings count as absent;
//   - rules that are not implicit are skipped for absent fields;
//   - a failing implicit rule (required) stops the remaining rules of its field.
package validation

import (
	"context"
	"fmt"
	"strings"

	"product-catalog/pkg/envelope"
)

// Source exposes request fields by name.
type Source interface {
	Lookup(field string) (any, bool)
}

// Fields is a map-backed Source.
type Fields map[string]any

func (f Fields) Lookup(field string) (any, bool) {
	v, ok := f[field]
	return v, ok
}

// Check is what a rule sees when evaluated.
type Check struct {
	Field string
	Value any
	Input Source
}

// Rule is a single named check with its message template.
type Rule struct {
	Name     string
	Implicit bool
	test     func(ctx context.Context, c Check) (bool, error)
	message  func(attribute string) string
}

// FieldRules binds an ordered rule list to a field.
type FieldRules struct {
	Field string
	Rules []Rule
}

// Table is the rule set of one operation.
type Table []FieldRules

// Validate runs every rule of the table. The returned error is non-nil only
// when a rule could not be evaluated, for example a failing store lookup.
func (t Table) Validate(ctx context.Context, in Source) (envelope.FieldErrors, error) {
	failures := envelope.FieldErrors{}

	for _, fr := range t {
		value, _ := in.Lookup(fr.Field)
		present := isPresent(value)

		for _, rule := range fr.Rules {
			if !present && !rule.Implicit {
				continue
			}

			ok, err := rule.test(ctx, Check{Field: fr.Field, Value: value, Input: in})
			if err != nil {
				return nil, fmt.Errorf("rule %s on %s: %w", rule.Name, fr.Field, err)
			}
			if ok {
				continue
			}

			failures.Add(fr.Field, rule.message(attribute(fr.Field)))
			if rule.Implicit {
				break
			}
		}
	}

	if len(failures) == 0 {
		return nil, nil
	}
	return failures, nil
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func isPresent(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case Upload:
		return v.UploadSize() > 0
	default:
		return true
	}
}
