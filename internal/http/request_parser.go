// This file maps form and query values onto client inputs. Field names
// follow the ids of the page's input elements.

package http

import (
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/ui"
)

// Form prefixes: the add form uses bare names, the edit form "edit-".
const (
	addFormPrefix  = ""
	editFormPrefix = "edit-"
)

// ParseFields reads the date/category/description/amount inputs of the form
// whose names carry prefix.
func ParseFields(form url.Values, prefix string) ui.Fields {
	return ui.Fields{
		Date:        sanitizeInput(form.Get(prefix + "date")),
		Category:    sanitizeInput(form.Get(prefix + "category")),
		Description: sanitizeInput(form.Get(prefix + "description")),
		Amount:      sanitizeInput(form.Get(prefix + "amount")),
	}
}

// ParseFilter reads the filter inputs.
func ParseFilter(q url.Values) core.Filter {
	return core.Filter{
		StartDate: sanitizeInput(q.Get("start-date")),
		EndDate:   sanitizeInput(q.Get("end-date")),
		Category:  sanitizeInput(q.Get("filter-category")),
	}
}

// ParsePeriod reads the summary year/month inputs.
func ParsePeriod(q url.Values) core.Period {
	return core.Period{
		Year:  sanitizeInput(q.Get("summary-year")),
		Month: sanitizeInput(q.Get("summary-month")),
	}
}

// parseID reads a positive transaction id from a path segment.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters (except tab, newline and carriage
// return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
