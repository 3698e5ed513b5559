package types

// FieldType is the closed tag set that determines a field's configuration
// shape, editor and renderer.
type FieldType string

const (
	FieldTypeText           FieldType = "text"
	FieldTypeParagraph      FieldType = "paragraph"
	FieldTypeTextEditor     FieldType = "text_editor"
	FieldTypeEmail          FieldType = "email"
	FieldTypeNumber         FieldType = "number"
	FieldTypePhone          FieldType = "phone"
	FieldTypeSignature      FieldType = "signature"
	FieldTypeDateTime       FieldType = "date_time"
	FieldTypeChoice         FieldType = "choice"
	FieldTypeCheckbox       FieldType = "checkbox"
	FieldTypeMultipleChoice FieldType = "multiple_choice"
	FieldTypeCheckboxes     FieldType = "checkboxes"
	FieldTypeDropdown       FieldType = "dropdown"

	FieldTypeDescription    FieldType = "description"
	FieldTypeImage          FieldType = "image"
	FieldTypeLink           FieldType = "link"
	FieldTypeFormHeading    FieldType = "form_heading"
	FieldTypeSectionHeading FieldType = "section_heading"
	FieldTypeSubHeading     FieldType = "sub_heading"
	FieldTypeDivider        FieldType = "divider"
	FieldTypeSpacer         FieldType = "spacer"

	FieldTypeSubmit    FieldType = "submit"
	FieldTypePageBreak FieldType = "page_break"
)

// FieldCategory groups field types by how the submission flow treats them
type FieldCategory string

const (
	// CategoryContent fields collect a value from the end user
	CategoryContent FieldCategory = "content"
	// CategoryLayout fields are presentation only
	CategoryLayout FieldCategory = "layout"
	// CategoryControl fields are markers consumed by the pager and flow
	CategoryControl FieldCategory = "control"
	// CategoryUnknown is reported for types outside the closed set
	CategoryUnknown FieldCategory = "unknown"
)

// ValueKind is the semantic type of the value a field produces
type ValueKind string

const (
	ValueNone      ValueKind = "none"
	ValueString    ValueKind = "string"
	ValueNumber    ValueKind = "number"
	ValueBool      ValueKind = "bool"
	ValueStrings   ValueKind = "strings"
	ValueTimestamp ValueKind = "timestamp"
)

// AllFieldTypes returns all valid field types in palette order
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeParagraph,
		FieldTypeTextEditor,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypePhone,
		FieldTypeSignature,
		FieldTypeDateTime,
		FieldTypeChoice,
		FieldTypeCheckbox,
		FieldTypeMultipleChoice,
		FieldTypeCheckboxes,
		FieldTypeDropdown,
		FieldTypeDescription,
		FieldTypeImage,
		FieldTypeLink,
		FieldTypeFormHeading,
		FieldTypeSectionHeading,
		FieldTypeSubHeading,
		FieldTypeDivider,
		FieldTypeSpacer,
		FieldTypeSubmit,
		FieldTypePageBreak,
	}
}

// IsValid checks if the field type is in the closed set
func (t FieldType) IsValid() bool {
	return t.Category() != CategoryUnknown
}

// Category returns the category of the field type
func (t FieldType) Category() FieldCategory {
	switch t {
	case FieldTypeText,
		FieldTypeParagraph,
		FieldTypeTextEditor,
		FieldTypeEmail,
		FieldTypeNumber,
		FieldTypePhone,
		FieldTypeSignature,
		FieldTypeDateTime,
		FieldTypeChoice,
		FieldTypeCheckbox,
		FieldTypeMultipleChoice,
		FieldTypeCheckboxes,
		FieldTypeDropdown:
		return CategoryContent
	case FieldTypeDescription,
		FieldTypeImage,
		FieldTypeLink,
		FieldTypeFormHeading,
		FieldTypeSectionHeading,
		FieldTypeSubHeading,
		FieldTypeDivider,
		FieldTypeSpacer:
		return CategoryLayout
	case FieldTypeSubmit, FieldTypePageBreak:
		return CategoryControl
	default:
		return CategoryUnknown
	}
}

// IsContent reports whether the field collects an end-user value
func (t FieldType) IsContent() bool {
	return t.Category() == CategoryContent
}

// HasOptions reports whether the type carries an options list
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeChoice, FieldTypeMultipleChoice, FieldTypeCheckboxes, FieldTypeDropdown:
		return true
	default:
		return false
	}
}

// ValueKind returns the default value kind of the type. A choice field with
// multiple selection enabled produces ValueStrings; that is resolved on the
// field, not here.
func (t FieldType) ValueKind() ValueKind {
	switch t {
	case FieldTypeText,
		FieldTypeParagraph,
		FieldTypeTextEditor,
		FieldTypeEmail,
		FieldTypePhone,
		FieldTypeSignature,
		FieldTypeChoice,
		FieldTypeMultipleChoice,
		FieldTypeDropdown:
		return ValueString
	case FieldTypeNumber:
		return ValueNumber
	case FieldTypeCheckbox:
		return ValueBool
	case FieldTypeCheckboxes:
		return ValueStrings
	case FieldTypeDateTime:
		return ValueTimestamp
	default:
		return ValueNone
	}
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}
