package agenda

import (
	"strings"
	"time"

	appLog "github.com/espinosaluis/estepona-agenda-calendar/internal/log"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/model"
)

// maxTitleRunes bounds event titles; agenda lines occasionally swallow a
// whole paragraph when the page markup degrades.
const maxTitleRunes = 250

// flushEvent materializes the open event context into one event per active
// date, then discards the context.
func (p *Parser) flushEvent() {
	if p.evt == nil {
		return
	}
	evt := p.evt
	p.evt = nil

	title := cleanTitle(evt.title)
	if title == "" || p.isExcluded(title) {
		return
	}

	desc := p.opts.SourceLine
	if extras := nonEmpty(evt.extra); len(extras) > 0 {
		desc += "\n" + strings.Join(extras, "\n")
	}

	for _, d := range evt.dates {
		start := evt.start.On(d)

		var end time.Time
		if evt.end == nil {
			end = start.Add(p.opts.DefaultDuration)
		} else {
			end = evt.end.On(d)
			// An end at or before the start means the event crosses
			// midnight.
			if !end.After(start) {
				end = end.AddDate(0, 0, 1)
			}
		}

		p.addEvent(model.CalendarEvent{
			Title:       title,
			Start:       start,
			End:         end,
			Location:    evt.location,
			Description: desc,
		})
	}
}

// flushRange materializes the open pending range as one spanning event
// covering [start 00:00, end+1d 00:00), then discards it. A range whose
// header was never followed by a title line is dropped silently.
func (p *Parser) flushRange() {
	if p.rng == nil {
		return
	}
	rng := p.rng
	p.rng = nil

	title := cleanTitle(rng.title)
	if title == "" || p.isExcluded(title) {
		return
	}

	start, end := rng.start, rng.end
	if end.Before(start) {
		if !rng.impliedStart {
			// An explicit "DEL d1 HASTA d2" with d2 < d1 is page noise.
			appLog.Debug("range header with end before start discarded", "title", title)
			return
		}
		// The inferred start overshot the written end date; collapse to
		// a single day ending at the written date.
		start = end
	}

	descLines := []string{p.opts.SourceLine}
	for _, d := range rng.details {
		if d != "" && !p.isGarbage(d) {
			descLines = append(descLines, d)
		}
	}

	p.addEvent(model.CalendarEvent{
		Title:       title,
		Start:       start,
		End:         end.AddDate(0, 0, 1),
		Description: strings.Join(descLines, "\n"),
	})
}

// addEvent applies deduplication before appending: the first occurrence of
// a (title, start, end, location) tuple wins, later ones are dropped.
func (p *Parser) addEvent(ev model.CalendarEvent) {
	key := ev.Key()
	if _, dup := p.seen[key]; dup {
		return
	}
	p.seen[key] = struct{}{}
	p.events = append(p.events, ev)
}

// isExcluded reports whether the title contains a denylisted keyword,
// case-insensitively.
func (p *Parser) isExcluded(title string) bool {
	upper := strings.ToUpper(title)
	for _, kw := range p.opts.ExcludeTitles {
		if strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

func cleanTitle(s string) string {
	s = collapseSpaces(s)
	if runes := []rune(s); len(runes) > maxTitleRunes {
		s = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	return s
}

func nonEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
