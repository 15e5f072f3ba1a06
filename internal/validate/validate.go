// Package validate implements rule-driven field and form validation.
// Rules are declarative data except for the sanitize and custom slots,
// which carry caller-provided functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule describes the checks applied to a single field. Zero-value length
// bounds are unset. Sanitize runs before every other check; Custom runs
// last and may return its own error message.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Sanitize  func(string) string
	Custom    func(value string) (ok bool, message string)
}

// Schema maps field names to their rules.
type Schema map[string]Rule

// FieldResult holds the outcome of validating one field. SanitizedValue is
// populated whether or not the field validated.
type FieldResult struct {
	IsValid        bool
	Errors         []string
	SanitizedValue string
}

// FormResult holds the merged outcome of validating a whole form. Errors is
// keyed by field name and only contains failing fields; SanitizedData has an
// entry for every schema field regardless of validity.
type FormResult struct {
	IsValid       bool
	Errors        map[string][]string
	SanitizedData map[string]string
}

// Field validates a single value against a rule.
//
// A failed required check short-circuits with exactly one error. All other
// applicable checks run to completion and accumulate their errors.
func Field(value string, rule Rule) FieldResult {
	if rule.Sanitize != nil {
		value = rule.Sanitize(value)
	}

	result := FieldResult{SanitizedValue: value}

	if rule.Required && strings.TrimSpace(value) == "" {
		result.Errors = append(result.Errors, "this field is required")
		return result
	}

	// Optional and empty: vacuously valid
	if !rule.Required && value == "" {
		result.IsValid = true
		return result
	}

	if rule.MinLength > 0 && len(value) < rule.MinLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("must have a minimum of %d characters", rule.MinLength))
	}
	if rule.MaxLength > 0 && len(value) > rule.MaxLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("must have a maximum of %d characters", rule.MaxLength))
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		result.Errors = append(result.Errors, "invalid format")
	}

	if rule.Custom != nil {
		if ok, message := rule.Custom(value); !ok {
			if message == "" {
				message = "invalid value"
			}
			result.Errors = append(result.Errors, message)
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// Form validates every schema field independently and merges the results.
// Fields absent from data validate as empty strings.
func Form(data map[string]string, schema Schema) FormResult {
	result := FormResult{
		IsValid:       true,
		Errors:        make(map[string][]string),
		SanitizedData: make(map[string]string, len(schema)),
	}

	for name, rule := range schema {
		fieldResult := Field(data[name], rule)
		result.SanitizedData[name] = fieldResult.SanitizedValue
		if !fieldResult.IsValid {
			result.IsValid = false
			result.Errors[name] = fieldResult.Errors
		}
	}

	return result
}
