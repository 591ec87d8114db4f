package agenda

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	dayRangeDateRe = regexp.MustCompile(`^(\d{1,2})\s*[–-]\s*(\d{1,2})\s*/\s*(\d{1,2})\s*/\s*(\d{2,4})$`)
	enumTailRe     = regexp.MustCompile(`^(.+?)\s*/\s*(\d{1,2})\s*/\s*(\d{2,4})$`)
	dayPairRe      = regexp.MustCompile(`(\d{1,2})\s*[-–]\s*(\d{1,2})`)
	dayNumRe       = regexp.MustCompile(`\b(\d{1,2})\b`)
)

// parseDateSet recognizes discrete-date-set headers:
//
//	"16/12/25"            a single date
//	"15 – 19/12/25"       a contiguous day range sharing month/year
//	"19-20 & 21/12/25"    an enumerated list sharing one trailing /M/Y
//
// The result is deduplicated and ascending; day numbers invalid for the
// month are silently dropped. Returns nil when the line is not a date-set
// header (including an inverted range like "20-15/12/25").
func (c *Classifier) parseDateSet(line string) []time.Time {
	if d, ok := c.parseDMY(line); ok {
		return []time.Time{d}
	}

	if m := dayRangeDateRe.FindStringSubmatch(line); m != nil {
		d1, _ := strconv.Atoi(m[1])
		d2, _ := strconv.Atoi(m[2])
		mo, _ := strconv.Atoi(m[3])
		y, _ := strconv.Atoi(m[4])
		if d2 < d1 {
			return nil
		}
		start, ok1 := c.makeDate(y, mo, d1)
		end, ok2 := c.makeDate(y, mo, d2)
		if ok1 && ok2 {
			return expandDaily(start, end)
		}
		// An endpoint is not a real date for that month ("28-31/2/25");
		// fall through to the enumerated form, which drops invalid days
		// individually.
	}

	if m := enumTailRe.FindStringSubmatch(line); m != nil {
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		return c.enumerateDays(m[1], mo, y)
	}

	return nil
}

// enumerateDays expands the left-hand side of an enumerated header
// ("19-20 & 21", "09 & 10") against a shared month/year.
func (c *Classifier) enumerateDays(left string, mo, y int) []time.Time {
	days := make(map[int]struct{})

	for _, pair := range dayPairRe.FindAllStringSubmatch(left, -1) {
		a, _ := strconv.Atoi(pair[1])
		b, _ := strconv.Atoi(pair[2])
		if b < a {
			a, b = b, a
		}
		for d := a; d <= b; d++ {
			days[d] = struct{}{}
		}
	}
	for _, num := range dayNumRe.FindAllStringSubmatch(left, -1) {
		d, _ := strconv.Atoi(num[1])
		days[d] = struct{}{}
	}
	if len(days) == 0 {
		return nil
	}

	sorted := make([]int, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	sort.Ints(sorted)

	out := make([]time.Time, 0, len(sorted))
	for _, d := range sorted {
		if t, ok := c.makeDate(y, mo, d); ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// expandDaily flattens an inclusive [start, end] midnight span into one
// date per day via a daily recurrence rule.
func expandDaily(start, end time.Time) []time.Time {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Until:   end,
	})
	if err != nil {
		return nil
	}
	return r.All()
}
