package agenda

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind tags the classification of one normalized agenda line. The set is
// closed so the parser's state machine can switch over it exhaustively.
type Kind int

const (
	// KindRangeHeader is a multi-day span header:
	// "DEL 18/12/25 HASTA 12/01/26" or "Hasta el 04/01/2026".
	KindRangeHeader Kind = iota

	// KindDateSetHeader names one or more discrete dates:
	// "16/12/25", "15 – 19/12/25", "19-20 & 21/12/25".
	KindDateSetHeader

	// KindTimedTitle pairs a clock time (and optional end time) with an
	// event name: "18:00 CONCIERTO", "12:00 – 18:00 TALLER".
	KindTimedTitle

	// KindSectionHeader is a known page section name ("AGENDA",
	// "DICIEMBRE", ...); consumed and dropped.
	KindSectionHeader

	// KindPlain is anything else; interpreted contextually.
	KindPlain
)

// ClockTime is a bare time of day as it appears on the page.
type ClockTime struct {
	Hour   int
	Minute int
}

// On combines the clock time with a calendar date in the date's location.
func (c ClockTime) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, d.Location())
}

// Classification is the tagged result of classifying one line. Only the
// fields for the matching Kind are populated.
type Classification struct {
	Kind Kind

	// Range header. RangeStart is zero for a bare "hasta" header, whose
	// start is context-dependent (UntilOnly set).
	RangeStart time.Time
	RangeEnd   time.Time
	UntilOnly  bool

	// Date-set header: deduplicated, ascending midnights.
	Dates []time.Time

	// Timed title.
	Start ClockTime
	End   *ClockTime
	Title string
}

var (
	rangeHeaderRe = regexp.MustCompile(`(?i)\bDEL\s+(\d{1,2}/\d{1,2}/\d{2,4})\s+HASTA\s+(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	untilHeaderRe = regexp.MustCompile(`(?i)\bHASTA(?:\s+EL)?\s+(\d{1,2}/\d{1,2}/\d{2,4})\b`)
	dmyRe         = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	timeRangeRe   = regexp.MustCompile(`(?i)^(\d{1,2}:\d{2})\s*(?:[–-]|a|hasta)\s*(\d{1,2}:\d{2})\s+(.+)$`)
	timeStartRe   = regexp.MustCompile(`^(\d{1,2}:\d{2})\s+(.+)$`)
)

// Classifier tests a normalized line against the fixed line patterns.
// First match wins, in priority order: range header, date-set header,
// timed title, section header, plain.
type Classifier struct {
	loc      *time.Location
	sections map[string]struct{}
}

// NewClassifier builds a classifier producing dates in loc. sectionHeaders
// are matched case-insensitively against the whole line.
func NewClassifier(loc *time.Location, sectionHeaders []string) *Classifier {
	sections := make(map[string]struct{}, len(sectionHeaders))
	for _, s := range sectionHeaders {
		sections[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &Classifier{loc: loc, sections: sections}
}

// Classify returns exactly one tagged result for the line.
func (c *Classifier) Classify(line string) Classification {
	line = strings.TrimSpace(line)

	if cl, ok := c.classifyRangeHeader(line); ok {
		return cl
	}
	if dates := c.parseDateSet(line); len(dates) > 0 {
		return Classification{Kind: KindDateSetHeader, Dates: dates}
	}
	if cl, ok := classifyTimedTitle(line); ok {
		return cl
	}
	if _, ok := c.sections[strings.ToUpper(line)]; ok {
		return Classification{Kind: KindSectionHeader}
	}
	return Classification{Kind: KindPlain}
}

func (c *Classifier) classifyRangeHeader(line string) (Classification, bool) {
	if m := rangeHeaderRe.FindStringSubmatch(line); m != nil {
		d1, ok1 := c.parseDMY(m[1])
		d2, ok2 := c.parseDMY(m[2])
		if ok1 && ok2 {
			return Classification{Kind: KindRangeHeader, RangeStart: d1, RangeEnd: d2}, true
		}
	}

	if m := untilHeaderRe.FindStringSubmatch(line); m != nil {
		if d, ok := c.parseDMY(m[1]); ok {
			return Classification{Kind: KindRangeHeader, RangeEnd: d, UntilOnly: true}, true
		}
	}

	return Classification{}, false
}

func classifyTimedTitle(line string) (Classification, bool) {
	if m := timeRangeRe.FindStringSubmatch(line); m != nil {
		start, ok1 := parseClock(m[1])
		end, ok2 := parseClock(m[2])
		if ok1 && ok2 {
			return Classification{
				Kind:  KindTimedTitle,
				Start: start,
				End:   &end,
				Title: collapseSpaces(m[3]),
			}, true
		}
	}

	if m := timeStartRe.FindStringSubmatch(line); m != nil {
		if start, ok := parseClock(m[1]); ok {
			return Classification{
				Kind:  KindTimedTitle,
				Start: start,
				Title: collapseSpaces(m[2]),
			}, true
		}
	}

	return Classification{}, false
}

// parseDMY parses "D/M/Y" with two- or four-digit years (Y < 100 means
// Y+2000) into a midnight in the classifier's location. Invalid calendar
// dates (day 31 of a 30-day month, month 13, ...) report !ok so the line
// falls through to the next classification tier.
func (c *Classifier) parseDMY(s string) (time.Time, bool) {
	m := dmyRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	d, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	return c.makeDate(y, mo, d)
}

// makeDate validates and builds a midnight date; two-digit years are
// expanded to 20xx.
func (c *Classifier) makeDate(y, mo, d int) (time.Time, bool) {
	if y < 100 {
		y += 2000
	}
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, c.loc)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject those.
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// parseClock parses "HH:MM" with range validation.
func parseClock(s string) (ClockTime, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return ClockTime{}, false
	}
	hour, err1 := strconv.Atoi(h)
	min, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
		return ClockTime{}, false
	}
	return ClockTime{Hour: hour, Minute: min}, true
}

// collapseSpaces trims and squeezes all interior whitespace runs to a
// single space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
