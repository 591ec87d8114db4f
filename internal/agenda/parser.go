// Package agenda turns the normalized text lines of the events page into
// deduplicated, sorted calendar events.
package agenda

import (
	"sort"
	"strings"
	"time"

	appLog "github.com/espinosaluis/estepona-agenda-calendar/internal/log"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/model"
)

// Options configures one parse run. The parser reads no ambient state: the
// reference date for bare "hasta" headers comes in via Today, which makes
// the whole engine a pure function of (lines, Options).
type Options struct {
	// Location is the timezone all produced instants are in.
	Location *time.Location

	// Today is the reference date used only when a bare "HASTA <d>"
	// header appears before any discrete date context.
	Today time.Time

	// SourceLine is the attribution prepended to every description.
	SourceLine string

	// ExcludeTitles drops any event whose title contains one of these,
	// case-insensitively.
	ExcludeTitles []string

	// GarbagePrefixes filters detail lines inside range blocks.
	GarbagePrefixes []string

	// SectionHeaders are structural page lines consumed without effect.
	SectionHeaders []string

	// LocationKeywords mark a line as a venue (sticky, first match wins).
	LocationKeywords []string

	// DefaultDuration applies when a timed line carries no end time.
	DefaultDuration time.Duration
}

func (o *Options) normalize() {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Today.IsZero() {
		o.Today = time.Now().In(o.Location)
	}
	if o.DefaultDuration <= 0 {
		o.DefaultDuration = 2 * time.Hour
	}
}

// parser state. The tracker owns at most one pendingRange and at most one
// eventContext at any time, never both.
type state int

const (
	stateScanning state = iota
	stateDated
	stateRangeAwaitingTitle
	stateRangeCollecting
	stateEventCollecting
)

// pendingRange accumulates an open multi-day span until the next header
// (or end of input) flushes it.
type pendingRange struct {
	start time.Time
	end   time.Time
	// impliedStart is set for bare "hasta" headers, where the start was
	// inferred rather than written on the page.
	impliedStart bool
	title        string
	details      []string
}

// eventContext accumulates one candidate timed event while the lines that
// follow its title are read.
type eventContext struct {
	dates    []time.Time
	start    ClockTime
	end      *ClockTime
	title    string
	location string
	extra    []string
}

// Parser walks the normalized line stream once, classifying each line,
// tracking the active date context and materializing finished events at
// every context boundary. Materializing only at end of input would keep
// just the last open context, so every header and every new timed-title
// line flushes first.
type Parser struct {
	opts       Options
	classifier *Classifier

	state       state
	activeDates []time.Time
	rng         *pendingRange
	evt         *eventContext

	// lastDate is the first date of the most recent discrete date
	// context; a bare "hasta" header starts there instead of at the
	// wall clock.
	lastDate time.Time

	seen   map[string]struct{}
	events []model.CalendarEvent
}

// NewParser builds a parser for one run.
func NewParser(opts Options) *Parser {
	opts.normalize()
	return &Parser{
		opts:       opts,
		classifier: NewClassifier(opts.Location, opts.SectionHeaders),
		state:      stateScanning,
		seen:       make(map[string]struct{}),
	}
}

// Parse consumes the full normalized-line sequence once and returns all
// materialized, filtered, deduplicated events sorted ascending by start
// (ties broken by title, then end).
func Parse(lines []string, opts Options) []model.CalendarEvent {
	p := NewParser(opts)
	for _, line := range lines {
		p.Feed(line)
	}
	return p.Finish()
}

// Feed consumes a single line.
func (p *Parser) Feed(line string) {
	line = collapseSpaces(strings.ReplaceAll(line, "\u00a0", " "))
	if line == "" || p.isGarbage(line) {
		return
	}

	c := p.classifier.Classify(line)
	switch c.Kind {
	case KindRangeHeader:
		p.flush()
		p.openRange(c)

	case KindDateSetHeader:
		p.flush()
		p.activeDates = c.Dates
		p.lastDate = c.Dates[0]
		p.state = stateDated

	case KindSectionHeader:
		// Consumed, no state change.

	case KindTimedTitle:
		p.feedTimedTitle(line, c)

	case KindPlain:
		p.feedPlain(line)
	}
}

// Finish flushes whatever context is still open and returns the sorted
// event sequence.
func (p *Parser) Finish() []model.CalendarEvent {
	p.flush()

	sort.Slice(p.events, func(i, j int) bool {
		a, b := p.events[i], p.events[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.End.Before(b.End)
	})

	return p.events
}

// openRange starts a new pendingRange. A range header supersedes any
// active date list until the range is flushed.
func (p *Parser) openRange(c Classification) {
	start := c.RangeStart
	implied := false
	if c.UntilOnly {
		start = p.untilStart()
		implied = true
	}

	p.rng = &pendingRange{start: start, end: c.RangeEnd, impliedStart: implied}
	p.activeDates = nil
	p.state = stateRangeAwaitingTitle
}

// untilStart picks the implicit start for a bare "hasta" header: the most
// recent discrete date context when one exists, else the run's reference
// date. Reusing generation-time "now" for a page prepared weeks ahead is
// the wrong listing start, so the preceding context wins whenever present.
func (p *Parser) untilStart() time.Time {
	if !p.lastDate.IsZero() {
		appLog.Debug("until header start inferred from preceding date context", "start", p.lastDate.Format("2006-01-02"))
		return p.lastDate
	}
	d := p.opts.Today.In(p.opts.Location)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, p.opts.Location)
	appLog.Debug("until header start fell back to reference date", "start", d.Format("2006-01-02"))
	return d
}

func (p *Parser) feedTimedTitle(line string, c Classification) {
	// Inside a range block a timed line is content, not a new event:
	// the first content line becomes the range title, later ones are
	// detail text.
	if p.state == stateRangeAwaitingTitle || p.state == stateRangeCollecting {
		p.feedRangeContent(line)
		return
	}

	// A new timed title flushes the current event context first.
	p.flushEvent()

	if len(p.activeDates) == 0 {
		appLog.Debug("timed line with no active date context discarded", "title", c.Title)
		p.state = stateScanning
		return
	}

	dates := make([]time.Time, len(p.activeDates))
	copy(dates, p.activeDates)
	p.evt = &eventContext{
		dates: dates,
		start: c.Start,
		end:   c.End,
		title: c.Title,
	}
	p.state = stateEventCollecting
}

func (p *Parser) feedPlain(line string) {
	switch p.state {
	case stateRangeAwaitingTitle, stateRangeCollecting:
		p.feedRangeContent(line)

	case stateEventCollecting:
		// Sticky location: the first venue-looking line wins, later
		// candidates are plain extra text.
		if p.evt.location == "" && p.matchesLocation(line) {
			p.evt.location = line
			return
		}
		p.evt.extra = append(p.evt.extra, line)

	default:
		// No context open; section filler, ignored.
	}
}

func (p *Parser) feedRangeContent(line string) {
	if p.state == stateRangeAwaitingTitle {
		p.rng.title = line
		p.state = stateRangeCollecting
		return
	}
	p.rng.details = append(p.rng.details, line)
}

// flush materializes and discards whichever context is open, returning the
// tracker to SCANNING. Invoked on every header, every new timed-title line
// and at end of input.
func (p *Parser) flush() {
	p.flushEvent()
	p.flushRange()
	p.state = stateScanning
}

func (p *Parser) isGarbage(line string) bool {
	for _, prefix := range p.opts.GarbagePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (p *Parser) matchesLocation(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range p.opts.LocationKeywords {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}
