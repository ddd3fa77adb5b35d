package parser

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// dateLayouts are tried in order before falling back to natural
// language parsing.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	"02 Jan 2006",
}

var naturalDates = newNaturalDateParser()

func newNaturalDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseDate turns human-authored date text into a time. Fixed layouts
// are tried first, then lenient natural language parsing ("last
// Tuesday"). Unparseable text yields nil rather than an error.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	r, err := naturalDates.Parse(value, time.Now())
	if err != nil || r == nil {
		return nil
	}
	return &r.Time
}
