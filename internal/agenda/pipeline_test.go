package agenda

import (
	"strings"
	"testing"
	"time"

	"github.com/espinosaluis/estepona-agenda-calendar/internal/ics"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/normalize"
)

// TestPipelineFromMarkup exercises the normalize -> parse -> serialize path
// the way a real run assembles it.
func TestPipelineFromMarkup(t *testing.T) {
	const page = `<html><head><title>Agenda</title>
<script>var x = 1;</script></head><body>
<h2>AGENDA</h2>
<div>16/12/25</div>
<div>18:00 CONCIERTO DE NAVIDAD</div>
<p>Plaza de las Flores</p>
<div>19-20 &amp; 21/12/25</div>
<div>20:00 TEATRO FAMILIAR</div>
<div>DEL 18/12/25 HASTA 12/01/26</div>
<div>BEL&Eacute;N MUNICIPAL</div>
<div>Horario: 10:00-20:00</div>
<p>Copyright © 2025 Ayuntamiento de Estepona</p>
</body></html>`

	opts := testOptions(t)

	lines, err := normalize.Lines(page, opts.GarbagePrefixes)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	events := Parse(lines, opts)
	// One timed event, three fan-out dates, one spanning range.
	if len(events) != 5 {
		t.Fatalf("got %d events, want 5: %+v", len(events), events)
	}

	now := time.Date(2025, time.December, 1, 8, 0, 0, 0, time.UTC)
	data, err := ics.Build(events, now)
	if err != nil {
		t.Fatalf("ics build failed: %v", err)
	}
	out := string(data)

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 5 {
		t.Errorf("got %d VEVENTs, want 5", got)
	}
	for _, want := range []string{
		"SUMMARY:CONCIERTO DE NAVIDAD",
		"SUMMARY:TEATRO FAMILIAR",
		"SUMMARY:BELÉN MUNICIPAL",
		"LOCATION:Plaza de las Flores",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("calendar missing %q", want)
		}
	}

	// Rerunning the whole pipeline must be byte-identical.
	lines2, err := normalize.Lines(page, opts.GarbagePrefixes)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	data2, err := ics.Build(Parse(lines2, opts), now)
	if err != nil {
		t.Fatalf("ics build failed: %v", err)
	}
	if string(data2) != out {
		t.Error("two pipeline runs over identical markup differ")
	}
}
