package render

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

var ErrInvalidValue = goerr.New("cannot decode field value")

// OtherOption is the option value that selects the free text "Other" input
const OtherOption = "__other__"

// OtherSuffix is appended to the field ID to name the "Other" text input
const OtherSuffix = "__other"

// Input layouts accepted from date and time pickers
const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	dateTimeLayout = "2006-01-02T15:04"
)

// ValueKind returns the semantic type of the value the field collects
func ValueKind(f model.Field) types.ValueKind {
	return f.ValueKind()
}

// Decode converts the raw submitted strings of one field into its semantic
// value: string, float64, bool, []string or an RFC3339 timestamp string.
// Fields that collect nothing decode to nil.
func Decode(f model.Field, raw []string) (any, error) {
	switch k := f.Kind().(type) {
	case model.TextEditorKind:
		return SanitizeRichText(first(raw)), nil

	case model.PhoneKind:
		parts := make([]string, 0, len(raw))
		for _, s := range raw {
			if s = strings.TrimSpace(s); s != "" {
				parts = append(parts, s)
			}
		}
		// a country code on its own is not a phone number
		if len(parts) < 2 {
			return "", nil
		}
		return strings.Join(parts, " "), nil

	case model.DateTimeKind:
		return decodeTimestamp(k, first(raw))
	}

	switch f.ValueKind() {
	case types.ValueNone:
		return nil, nil

	case types.ValueString:
		return first(raw), nil

	case types.ValueNumber:
		s := strings.TrimSpace(first(raw))
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidValue, "not a number",
				goerr.V(model.FieldIDKey, f.ID),
				goerr.V(model.FieldValueKey, s))
		}
		return n, nil

	case types.ValueBool:
		for _, s := range raw {
			if b, err := strconv.ParseBool(s); err == nil {
				return b, nil
			}
			if s == "on" {
				return true, nil
			}
		}
		return false, nil

	case types.ValueStrings:
		out := make([]string, 0, len(raw))
		for _, s := range raw {
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}

	return first(raw), nil
}

// DecodeValues reads the field's inputs out of a submitted HTML form,
// substituting the "Other" free text where it was selected.
func DecodeValues(f model.Field, form url.Values) (any, error) {
	raw := form[f.ID.String()]
	other := strings.TrimSpace(form.Get(f.ID.String() + OtherSuffix))

	values := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == OtherOption {
			if other == "" {
				continue
			}
			s = other
		}
		values = append(values, s)
	}
	return Decode(f, values)
}

func decodeTimestamp(k model.DateTimeKind, s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}

	var layout string
	switch {
	case k.EnableDate && k.EnableTime:
		layout = dateTimeLayout
	case k.EnableDate:
		layout = dateLayout
	default:
		layout = timeLayout
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidValue, "not a date",
			goerr.V(model.FieldValueKey, s),
			goerr.V("layout", layout))
	}
	if layout == timeLayout {
		now := time.Now().UTC()
		t = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	}
	return t.UTC().Format(time.RFC3339), nil
}

func first(raw []string) string {
	if len(raw) == 0 {
		return ""
	}
	return raw[0]
}
