package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationErrors maps a field ID to the message shown next to that field
type ValidationErrors map[types.FieldID]string

// IsEmptyValue reports whether v counts as "not filled in" for the required
// rule: nil, blank strings, false and empty lists.
func IsEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return !x
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case float64:
		return math.IsNaN(x)
	default:
		return false
	}
}

// ValidateValue returns the user facing message for v on field f, or "" when
// v is acceptable. Layout and control fields always pass.
func ValidateValue(f Field, v any) string {
	if !f.IsContent() {
		return ""
	}

	if IsEmptyValue(v) {
		if f.Required {
			return MsgRequired
		}
		return ""
	}

	switch k := f.Kind().(type) {
	case EmailKind:
		s, ok := v.(string)
		if !ok || !emailPattern.MatchString(s) {
			return MsgInvalidEmail
		}

	case NumberKind:
		n, ok := ToNumber(v)
		if !ok {
			return MsgInvalidNumber
		}
		if k.Min != nil && n < *k.Min {
			return "Value must be at least " + formatNumber(*k.Min)
		}
		if k.Max != nil && n > *k.Max {
			return "Value must be at most " + formatNumber(*k.Max)
		}

	case DateTimeKind:
		s, ok := v.(string)
		if !ok {
			return MsgInvalidDate
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return MsgInvalidDate
		}

	case TextKind:
		return validateLength(k.LengthRules, v)
	case ParagraphKind:
		return validateLength(k.LengthRules, v)
	}

	return ""
}

func validateLength(r LengthRules, v any) string {
	s, ok := v.(string)
	if !ok {
		return MsgInvalidValue
	}
	n := utf8.RuneCountInString(s)
	if r.MinLength != nil && n < *r.MinLength {
		return fmt.Sprintf("Must be at least %d characters", *r.MinLength)
	}
	if r.MaxLength != nil && n > *r.MaxLength {
		return fmt.Sprintf("Must be at most %d characters", *r.MaxLength)
	}
	if r.Pattern != "" {
		re, err := regexp.Compile(r.Pattern)
		// an unusable pattern configured by the builder must not lock out respondents
		if err == nil && !re.MatchString(s) {
			return MsgPattern
		}
	}
	return ""
}

// ToNumber converts JSON and Go numeric values into float64
func ToNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ValidateResponse checks a complete submission against the form. Field
// level problems are returned as ValidationErrors; keys that do not belong to
// a content field of the form are rejected with ErrUnknownField.
func ValidateResponse(form *Form, data map[types.FieldID]any) (ValidationErrors, error) {
	fields := make(map[types.FieldID]Field, len(form.Fields))
	for _, f := range form.Fields {
		fields[f.ID] = f
	}

	for id := range data {
		f, ok := fields[id]
		if !ok || !f.IsContent() {
			return nil, goerr.Wrap(ErrUnknownField, "response contains unknown field",
				goerr.V(FieldIDKey, id),
				goerr.V(FormIDKey, form.ID))
		}
	}

	errs := make(ValidationErrors)
	for _, f := range form.SortedFields() {
		if !f.IsContent() {
			continue
		}
		v := data[f.ID]
		if msg := checkValueType(f, v); msg != "" {
			errs[f.ID] = msg
			continue
		}
		if msg := ValidateValue(f, v); msg != "" {
			errs[f.ID] = msg
		}
	}

	return errs, nil
}

// checkValueType verifies that v has the semantic type of the field
func checkValueType(f Field, v any) string {
	if v == nil {
		return ""
	}

	switch f.ValueKind() {
	case types.ValueString:
		s, ok := v.(string)
		if !ok {
			return MsgInvalidValue
		}
		return checkOption(f, s)

	case types.ValueNumber:
		if _, ok := v.(string); ok {
			return MsgInvalidNumber
		}
		if _, ok := ToNumber(v); !ok {
			return MsgInvalidNumber
		}

	case types.ValueBool:
		if _, ok := v.(bool); !ok {
			return MsgInvalidValue
		}

	case types.ValueStrings:
		items, ok := ToStrings(v)
		if !ok {
			return MsgInvalidValue
		}
		for _, item := range items {
			if msg := checkOption(f, item); msg != "" {
				return msg
			}
		}

	case types.ValueTimestamp:
		s, ok := v.(string)
		if !ok {
			return MsgInvalidDate
		}
		if s != "" {
			if _, err := time.Parse(time.RFC3339, s); err != nil {
				return MsgInvalidDate
			}
		}
	}
	return ""
}

// checkOption accepts option values, and any free text when "Other" is
// enabled on the field
func checkOption(f Field, s string) string {
	if !f.Type.HasOptions() || s == "" {
		return ""
	}
	var opts []Option
	allowOther := false
	switch k := f.Kind().(type) {
	case ChoiceKind:
		opts, allowOther = k.Options, k.AllowOther
	case MultipleChoiceKind:
		opts, allowOther = k.Options, k.AllowOther
	case CheckboxesKind:
		opts = k.Options
	case DropdownKind:
		opts = k.Options
	}
	if allowOther {
		return ""
	}
	for _, o := range opts {
		if o.Value == s {
			return ""
		}
	}
	return MsgInvalidOption
}

// ToStrings converts []string and JSON decoded []any into []string
func ToStrings(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
