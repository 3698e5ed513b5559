package model

import (
	"slices"

	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// Kind is the closed sum of per-type field payloads. Each variant carries a
// total, statically known configuration. Field data whose type is outside the
// closed set (imported or generated) decodes to UnknownKind.
type Kind interface {
	FieldType() types.FieldType
	apply(f *Field)
}

// LengthRules are the length and pattern bounds of free text inputs
type LengthRules struct {
	MinLength *int
	MaxLength *int
	Pattern   string
}

// Heading is shared by the three heading variants
type Heading struct {
	Text string
	Size string
}

type TextKind struct{ LengthRules }

type ParagraphKind struct{ LengthRules }

type TextEditorKind struct{}

type EmailKind struct{}

type NumberKind struct {
	Min *float64
	Max *float64
}

type PhoneKind struct{}

type SignatureKind struct{}

type DateTimeKind struct {
	EnableDate bool
	EnableTime bool
}

type ChoiceKind struct {
	Options    []Option
	AllowOther bool
	Multiple   bool
}

type CheckboxKind struct{ Text string }

type MultipleChoiceKind struct {
	Options    []Option
	AllowOther bool
}

type CheckboxesKind struct{ Options []Option }

type DropdownKind struct{ Options []Option }

type DescriptionKind struct{ Text string }

type ImageKind struct {
	Text string
	URL  string
}

type LinkKind struct {
	Text string
	URL  string
}

type FormHeadingKind struct{ Heading }

type SectionHeadingKind struct{ Heading }

type SubHeadingKind struct{ Heading }

type DividerKind struct{ Style string }

type SpacerKind struct{ Height string }

type SubmitKind struct {
	Text  string
	Style string
}

type PageBreakKind struct {
	NextButtonText string
	PrevButtonText string
}

// UnknownKind keeps a field of an unrecognised type discoverable
type UnknownKind struct{ Type types.FieldType }

const (
	DefaultSubmitText     = "Submit"
	DefaultSubmitStyle    = "primary"
	DefaultNextButtonText = "Next"
	DefaultPrevButtonText = "Previous"
	DefaultDividerStyle   = "solid"
	DefaultSpacerHeight   = "md"
)

// DefaultHeadingSize returns the size used when a heading has none configured
func DefaultHeadingSize(t types.FieldType) string {
	switch t {
	case types.FieldTypeFormHeading:
		return "xl"
	case types.FieldTypeSectionHeading:
		return "lg"
	default:
		return "md"
	}
}

// Kind decodes the loosely typed configuration into its variant
func (f Field) Kind() Kind {
	c := f.Config
	if c == nil {
		c = &Config{}
	}
	v := f.Validation
	if v == nil {
		v = &Validation{}
	}
	opts := slices.Clone(c.Options)

	switch f.Type {
	case types.FieldTypeText:
		return TextKind{lengthRules(v)}
	case types.FieldTypeParagraph:
		return ParagraphKind{lengthRules(v)}
	case types.FieldTypeTextEditor:
		return TextEditorKind{}
	case types.FieldTypeEmail:
		return EmailKind{}
	case types.FieldTypeNumber:
		return NumberKind{Min: clonePtr(v.Min), Max: clonePtr(v.Max)}
	case types.FieldTypePhone:
		return PhoneKind{}
	case types.FieldTypeSignature:
		return SignatureKind{}
	case types.FieldTypeDateTime:
		return DateTimeKind{
			EnableDate: deref(c.EnableDate, true),
			EnableTime: deref(c.EnableTime, true),
		}
	case types.FieldTypeChoice:
		return ChoiceKind{Options: opts, AllowOther: deref(c.AllowOther, false), Multiple: deref(c.Multiple, false)}
	case types.FieldTypeCheckbox:
		return CheckboxKind{Text: deref(c.Text, "")}
	case types.FieldTypeMultipleChoice:
		return MultipleChoiceKind{Options: opts, AllowOther: deref(c.AllowOther, false)}
	case types.FieldTypeCheckboxes:
		return CheckboxesKind{Options: opts}
	case types.FieldTypeDropdown:
		return DropdownKind{Options: opts}
	case types.FieldTypeDescription:
		return DescriptionKind{Text: deref(c.Text, "")}
	case types.FieldTypeImage:
		return ImageKind{Text: deref(c.Text, ""), URL: deref(c.URL, "")}
	case types.FieldTypeLink:
		return LinkKind{Text: deref(c.Text, ""), URL: deref(c.URL, "")}
	case types.FieldTypeFormHeading:
		return FormHeadingKind{heading(f.Type, c)}
	case types.FieldTypeSectionHeading:
		return SectionHeadingKind{heading(f.Type, c)}
	case types.FieldTypeSubHeading:
		return SubHeadingKind{heading(f.Type, c)}
	case types.FieldTypeDivider:
		return DividerKind{Style: orDefault(c.Style, DefaultDividerStyle)}
	case types.FieldTypeSpacer:
		return SpacerKind{Height: orDefault(c.Height, DefaultSpacerHeight)}
	case types.FieldTypeSubmit:
		return SubmitKind{
			Text:  orDefault(deref(c.Text, ""), DefaultSubmitText),
			Style: orDefault(c.Style, DefaultSubmitStyle),
		}
	case types.FieldTypePageBreak:
		return PageBreakKind{
			NextButtonText: orDefault(c.NextButtonText, DefaultNextButtonText),
			PrevButtonText: orDefault(c.PrevButtonText, DefaultPrevButtonText),
		}
	default:
		return UnknownKind{Type: f.Type}
	}
}

// WithKind returns a copy of the field with type and configuration taken from
// k. ID, order, label, description, placeholder and required are kept.
func (f Field) WithKind(k Kind) Field {
	out := f.Clone()
	k.apply(&out)
	return out
}

func lengthRules(v *Validation) LengthRules {
	return LengthRules{
		MinLength: clonePtr(v.MinLength),
		MaxLength: clonePtr(v.MaxLength),
		Pattern:   v.Pattern,
	}
}

func heading(t types.FieldType, c *Config) Heading {
	return Heading{
		Text: deref(c.Text, ""),
		Size: orDefault(c.Size, DefaultHeadingSize(t)),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func (r LengthRules) validation() *Validation {
	if r.MinLength == nil && r.MaxLength == nil && r.Pattern == "" {
		return nil
	}
	return &Validation{
		MinLength: clonePtr(r.MinLength),
		MaxLength: clonePtr(r.MaxLength),
		Pattern:   r.Pattern,
	}
}

func textPtr(s string) *string {
	return &s
}

func (k TextKind) FieldType() types.FieldType {
	return types.FieldTypeText
}

func (k TextKind) apply(f *Field) {
	f.Type, f.Config, f.Validation = k.FieldType(), nil, k.validation()
}

func (k ParagraphKind) FieldType() types.FieldType {
	return types.FieldTypeParagraph
}

func (k ParagraphKind) apply(f *Field) {
	f.Type, f.Config, f.Validation = k.FieldType(), nil, k.validation()
}

func (k TextEditorKind) FieldType() types.FieldType {
	return types.FieldTypeTextEditor
}

func (k TextEditorKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), nil
}

func (k EmailKind) FieldType() types.FieldType {
	return types.FieldTypeEmail
}

func (k EmailKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), nil
}

func (k NumberKind) FieldType() types.FieldType {
	return types.FieldTypeNumber
}

func (k NumberKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), nil
	if k.Min == nil && k.Max == nil {
		f.Validation = nil
		return
	}
	f.Validation = &Validation{Min: clonePtr(k.Min), Max: clonePtr(k.Max)}
}

func (k PhoneKind) FieldType() types.FieldType {
	return types.FieldTypePhone
}

func (k PhoneKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), nil
}

func (k SignatureKind) FieldType() types.FieldType {
	return types.FieldTypeSignature
}

func (k SignatureKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), nil
}

func (k DateTimeKind) FieldType() types.FieldType {
	return types.FieldTypeDateTime
}

func (k DateTimeKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{EnableDate: Ptr(k.EnableDate), EnableTime: Ptr(k.EnableTime)}
}

func (k ChoiceKind) FieldType() types.FieldType {
	return types.FieldTypeChoice
}

func (k ChoiceKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Options: slices.Clone(k.Options), AllowOther: Ptr(k.AllowOther), Multiple: Ptr(k.Multiple)}
}

func (k CheckboxKind) FieldType() types.FieldType {
	return types.FieldTypeCheckbox
}

func (k CheckboxKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Text: textPtr(k.Text)}
}

func (k MultipleChoiceKind) FieldType() types.FieldType {
	return types.FieldTypeMultipleChoice
}

func (k MultipleChoiceKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Options: slices.Clone(k.Options), AllowOther: Ptr(k.AllowOther)}
}

func (k CheckboxesKind) FieldType() types.FieldType {
	return types.FieldTypeCheckboxes
}

func (k CheckboxesKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Options: slices.Clone(k.Options), Multiple: Ptr(true)}
}

func (k DropdownKind) FieldType() types.FieldType {
	return types.FieldTypeDropdown
}

func (k DropdownKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Options: slices.Clone(k.Options)}
}

func (k DescriptionKind) FieldType() types.FieldType {
	return types.FieldTypeDescription
}

func (k DescriptionKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Text: textPtr(k.Text)}
}

func (k ImageKind) FieldType() types.FieldType {
	return types.FieldTypeImage
}

func (k ImageKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Text: textPtr(k.Text), URL: textPtr(k.URL)}
}

func (k LinkKind) FieldType() types.FieldType {
	return types.FieldTypeLink
}

func (k LinkKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{Text: textPtr(k.Text), URL: textPtr(k.URL)}
}

func (h Heading) config() *Config {
	return &Config{Text: textPtr(h.Text), Size: h.Size}
}

func (k FormHeadingKind) FieldType() types.FieldType {
	return types.FieldTypeFormHeading
}

func (k FormHeadingKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), k.config()
}

func (k SectionHeadingKind) FieldType() types.FieldType {
	return types.FieldTypeSectionHeading
}

func (k SectionHeadingKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), k.config()
}

func (k SubHeadingKind) FieldType() types.FieldType {
	return types.FieldTypeSubHeading
}

func (k SubHeadingKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), k.config()
}

func (k DividerKind) FieldType() types.FieldType {
	return types.FieldTypeDivider
}

func (k DividerKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), &Config{Style: k.Style}
}

func (k SpacerKind) FieldType() types.FieldType {
	return types.FieldTypeSpacer
}

func (k SpacerKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), &Config{Height: k.Height}
}

func (k SubmitKind) FieldType() types.FieldType {
	return types.FieldTypeSubmit
}

func (k SubmitKind) apply(f *Field) {
	f.Type, f.Config = k.FieldType(), &Config{Text: textPtr(k.Text), Style: k.Style}
}

func (k PageBreakKind) FieldType() types.FieldType {
	return types.FieldTypePageBreak
}

func (k PageBreakKind) apply(f *Field) {
	f.Type = k.FieldType()
	f.Config = &Config{NextButtonText: k.NextButtonText, PrevButtonText: k.PrevButtonText}
}

func (k UnknownKind) FieldType() types.FieldType {
	return k.Type
}

// apply leaves the configuration bag untouched so nothing imported is lost
func (k UnknownKind) apply(f *Field) {
	f.Type = k.Type
}
