// Package pager splits a form's fields into the pages of the submission
// flow.
package pager

import (
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
)

// Page is one step of the submission flow. Fields never contains the
// page_break markers that delimit pages.
type Page struct {
	Index  int           `json:"index"`
	Fields []model.Field `json:"fields"`
}

// Paginate walks fields in order and starts a new page at every page_break
// that follows a non-empty page. Leading and doubled page breaks never
// produce an empty page. The result always has at least one page.
func Paginate(fields []model.Field) []Page {
	sorted := sortFields(fields)

	var pages []Page
	current := make([]model.Field, 0)
	for _, f := range sorted {
		if f.Type == types.FieldTypePageBreak {
			if len(current) > 0 {
				pages = append(pages, Page{Index: len(pages), Fields: current})
				current = make([]model.Field, 0)
			}
			continue
		}
		current = append(current, f)
	}

	if len(current) > 0 || len(pages) == 0 {
		pages = append(pages, Page{Index: len(pages), Fields: current})
	}
	return pages
}

// Boundary returns the page_break that closes page index, which carries the
// navigation button labels for that page. The last page has none.
func Boundary(fields []model.Field, index int) (model.Field, bool) {
	sorted := sortFields(fields)

	page, size := 0, 0
	for i, f := range sorted {
		if f.Type != types.FieldTypePageBreak {
			size++
			continue
		}
		if size == 0 {
			continue
		}
		if page == index {
			// a trailing page break does not close a page
			if !hasContent(sorted[i+1:]) {
				return model.Field{}, false
			}
			return f, true
		}
		page++
		size = 0
	}
	return model.Field{}, false
}

func hasContent(fields []model.Field) bool {
	for _, f := range fields {
		if f.Type != types.FieldTypePageBreak {
			return true
		}
	}
	return false
}

func sortFields(fields []model.Field) []model.Field {
	form := model.Form{Fields: fields}
	return form.SortedFields()
}
