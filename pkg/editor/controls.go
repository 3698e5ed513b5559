package editor

import "github.com/secmon-lab/formflow/pkg/domain/types"

// ControlKind tells the builder UI which input to draw for a control
type ControlKind string

const (
	KindText     ControlKind = "text"
	KindTextarea ControlKind = "textarea"
	KindSwitch   ControlKind = "switch"
	KindNumber   ControlKind = "number"
	KindSelect   ControlKind = "select"
	KindOptions  ControlKind = "options"
)

// Control names
const (
	ControlLabel          = "label"
	ControlDescription    = "description"
	ControlPlaceholder    = "placeholder"
	ControlRequired       = "required"
	ControlMinLength      = "minLength"
	ControlMaxLength      = "maxLength"
	ControlMin            = "min"
	ControlMax            = "max"
	ControlEnableDate     = "enableDate"
	ControlEnableTime     = "enableTime"
	ControlOptions        = "options"
	ControlAllowOther     = "allowOther"
	ControlMultiple       = "multiple"
	ControlText           = "text"
	ControlURL            = "url"
	ControlSize           = "size"
	ControlStyle          = "style"
	ControlHeight         = "height"
	ControlNextButtonText = "nextButtonText"
	ControlPrevButtonText = "prevButtonText"
)

// Control describes one mutable attribute of a field
type Control struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Kind    ControlKind `json:"kind"`
	Choices []string    `json:"choices,omitempty"`
}

var (
	labelControl       = Control{Name: ControlLabel, Label: "Label", Kind: KindText}
	descriptionControl = Control{Name: ControlDescription, Label: "Description", Kind: KindTextarea}
	placeholderControl = Control{Name: ControlPlaceholder, Label: "Placeholder", Kind: KindText}
	requiredControl    = Control{Name: ControlRequired, Label: "Required", Kind: KindSwitch}
	minLengthControl   = Control{Name: ControlMinLength, Label: "Minimum length", Kind: KindNumber}
	maxLengthControl   = Control{Name: ControlMaxLength, Label: "Maximum length", Kind: KindNumber}
	minControl         = Control{Name: ControlMin, Label: "Minimum value", Kind: KindNumber}
	maxControl         = Control{Name: ControlMax, Label: "Maximum value", Kind: KindNumber}
	enableDateControl  = Control{Name: ControlEnableDate, Label: "Enable date", Kind: KindSwitch}
	enableTimeControl  = Control{Name: ControlEnableTime, Label: "Enable time", Kind: KindSwitch}
	optionsControl     = Control{Name: ControlOptions, Label: "Options", Kind: KindOptions}
	allowOtherControl  = Control{Name: ControlAllowOther, Label: `Allow "Other" option`, Kind: KindSwitch}
	multipleControl    = Control{Name: ControlMultiple, Label: "Allow multiple selections", Kind: KindSwitch}
	checkboxText       = Control{Name: ControlText, Label: "Checkbox text", Kind: KindText}
	bodyTextControl    = Control{Name: ControlText, Label: "Text", Kind: KindTextarea}
	altTextControl     = Control{Name: ControlText, Label: "Image description", Kind: KindText}
	imageURLControl    = Control{Name: ControlURL, Label: "Image URL", Kind: KindText}
	linkTextControl    = Control{Name: ControlText, Label: "Link text", Kind: KindText}
	linkURLControl     = Control{Name: ControlURL, Label: "URL", Kind: KindText}
	headingTextControl = Control{Name: ControlText, Label: "Heading text", Kind: KindText}
	headingSizeControl = Control{
		Name: ControlSize, Label: "Size", Kind: KindSelect,
		Choices: []string{"xl", "lg", "md", "sm"},
	}
	dividerStyleControl = Control{
		Name: ControlStyle, Label: "Style", Kind: KindSelect,
		Choices: []string{"solid", "dashed", "dotted"},
	}
	spacerHeightControl = Control{
		Name: ControlHeight, Label: "Height", Kind: KindSelect,
		Choices: []string{"sm", "md", "lg", "xl"},
	}
	buttonTextControl  = Control{Name: ControlText, Label: "Button text", Kind: KindText}
	buttonStyleControl = Control{
		Name: ControlStyle, Label: "Button style", Kind: KindSelect,
		Choices: []string{"primary", "secondary", "outline"},
	}
	nextButtonControl = Control{Name: ControlNextButtonText, Label: "Next button text", Kind: KindText}
	prevButtonControl = Control{Name: ControlPrevButtonText, Label: "Previous button text", Kind: KindText}
)

func controlsFor(t types.FieldType) []Control {
	switch t {
	case types.FieldTypeText, types.FieldTypeParagraph:
		return []Control{labelControl, descriptionControl, placeholderControl, requiredControl, minLengthControl, maxLengthControl}
	case types.FieldTypeTextEditor, types.FieldTypePhone, types.FieldTypeSignature, types.FieldTypeEmail:
		return []Control{labelControl, descriptionControl, placeholderControl, requiredControl}
	case types.FieldTypeNumber:
		return []Control{labelControl, descriptionControl, placeholderControl, requiredControl, minControl, maxControl}
	case types.FieldTypeDateTime:
		return []Control{labelControl, descriptionControl, requiredControl, enableDateControl, enableTimeControl}
	case types.FieldTypeChoice:
		return []Control{labelControl, descriptionControl, optionsControl, allowOtherControl, multipleControl, requiredControl}
	case types.FieldTypeMultipleChoice:
		return []Control{labelControl, descriptionControl, optionsControl, allowOtherControl, requiredControl}
	case types.FieldTypeCheckboxes, types.FieldTypeDropdown:
		return []Control{labelControl, descriptionControl, optionsControl, requiredControl}
	case types.FieldTypeCheckbox:
		return []Control{labelControl, descriptionControl, checkboxText, requiredControl}
	case types.FieldTypeDescription:
		return []Control{labelControl, bodyTextControl}
	case types.FieldTypeImage:
		return []Control{labelControl, altTextControl, imageURLControl}
	case types.FieldTypeLink:
		return []Control{labelControl, linkTextControl, linkURLControl}
	case types.FieldTypeFormHeading, types.FieldTypeSectionHeading, types.FieldTypeSubHeading:
		return []Control{headingTextControl, headingSizeControl}
	case types.FieldTypeDivider:
		return []Control{dividerStyleControl}
	case types.FieldTypeSpacer:
		return []Control{spacerHeightControl}
	case types.FieldTypeSubmit:
		return []Control{buttonTextControl, buttonStyleControl}
	case types.FieldTypePageBreak:
		return []Control{nextButtonControl, prevButtonControl}
	default:
		return []Control{labelControl, descriptionControl, requiredControl}
	}
}
