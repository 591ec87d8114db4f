package agenda

import (
	"strconv"
	"testing"
	"time"
)

func testClassifier(t *testing.T) (*Classifier, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	sections := []string{"AGENDA", "DICIEMBRE", "ENERO", "BELENES", "SEMANALES", "EXPOSICIONES"}
	return NewClassifier(loc, sections), loc
}

func date(loc *time.Location, y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func TestClassifyDateSetHeaders(t *testing.T) {
	c, loc := testClassifier(t)

	tests := []struct {
		name string
		line string
		want []time.Time
	}{
		{
			name: "single date",
			line: "16/12/25",
			want: []time.Time{date(loc, 2025, time.December, 16)},
		},
		{
			name: "single date four digit year",
			line: "4/1/2026",
			want: []time.Time{date(loc, 2026, time.January, 4)},
		},
		{
			name: "day range with en dash",
			line: "15 – 19/12/25",
			want: []time.Time{
				date(loc, 2025, time.December, 15),
				date(loc, 2025, time.December, 16),
				date(loc, 2025, time.December, 17),
				date(loc, 2025, time.December, 18),
				date(loc, 2025, time.December, 19),
			},
		},
		{
			name: "day range with hyphen no spaces",
			line: "15-19/12/25",
			want: []time.Time{
				date(loc, 2025, time.December, 15),
				date(loc, 2025, time.December, 16),
				date(loc, 2025, time.December, 17),
				date(loc, 2025, time.December, 18),
				date(loc, 2025, time.December, 19),
			},
		},
		{
			name: "enumerated range plus single day",
			line: "19-20 & 21/12/25",
			want: []time.Time{
				date(loc, 2025, time.December, 19),
				date(loc, 2025, time.December, 20),
				date(loc, 2025, time.December, 21),
			},
		},
		{
			name: "enumerated pair",
			line: "09 & 10/01/26",
			want: []time.Time{
				date(loc, 2026, time.January, 9),
				date(loc, 2026, time.January, 10),
			},
		},
		{
			name: "enumerated duplicates collapse",
			line: "10 & 10 & 9/01/26",
			want: []time.Time{
				date(loc, 2026, time.January, 9),
				date(loc, 2026, time.January, 10),
			},
		},
		{
			name: "invalid day dropped from enumerated list",
			line: "30 & 31/11/25",
			want: []time.Time{date(loc, 2025, time.November, 30)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			if got.Kind != KindDateSetHeader {
				t.Fatalf("Classify(%q).Kind = %v, want KindDateSetHeader", tt.line, got.Kind)
			}
			if len(got.Dates) != len(tt.want) {
				t.Fatalf("Classify(%q) = %d dates, want %d (%v)", tt.line, len(got.Dates), len(tt.want), got.Dates)
			}
			for i := range tt.want {
				if !got.Dates[i].Equal(tt.want[i]) {
					t.Errorf("date[%d] = %v, want %v", i, got.Dates[i], tt.want[i])
				}
			}
		})
	}
}

func TestDayRangeLength(t *testing.T) {
	// A "D1-D2/M/Y" header with D1 <= D2 yields exactly D2-D1+1 consecutive
	// ascending dates.
	c, _ := testClassifier(t)

	for d1 := 1; d1 <= 5; d1++ {
		for d2 := d1; d2 <= 9; d2++ {
			line := strconv.Itoa(d1) + "-" + strconv.Itoa(d2) + "/12/25"
			got := c.Classify(line)
			if got.Kind != KindDateSetHeader {
				t.Fatalf("Classify(%q).Kind = %v, want KindDateSetHeader", line, got.Kind)
			}
			if len(got.Dates) != d2-d1+1 {
				t.Errorf("Classify(%q) = %d dates, want %d", line, len(got.Dates), d2-d1+1)
			}
			for i := 1; i < len(got.Dates); i++ {
				if got.Dates[i].Sub(got.Dates[i-1]) != 24*time.Hour {
					t.Errorf("Classify(%q) dates not consecutive: %v", line, got.Dates)
				}
			}
		}
	}
}

func TestClassifyNonDates(t *testing.T) {
	c, _ := testClassifier(t)

	tests := []struct {
		name string
		line string
		want Kind
	}{
		{"inverted day range is plain", "20-15/12/25", KindPlain},
		{"invalid calendar date is plain", "31/11/25", KindPlain},
		{"month thirteen is plain", "05/13/25", KindPlain},
		{"free text", "Entrada libre hasta completar aforo", KindPlain},
		{"section header", "BELENES", KindSectionHeader},
		{"section header lowercase", "exposiciones", KindSectionHeader},
		{"incomplete enumerated header without month", "22-23 & 24", KindPlain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.line); got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.line, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyTimedTitles(t *testing.T) {
	c, _ := testClassifier(t)

	tests := []struct {
		name      string
		line      string
		wantStart ClockTime
		wantEnd   *ClockTime
		wantTitle string
	}{
		{
			name:      "start only",
			line:      "18:00 CONCIERTO DE NAVIDAD",
			wantStart: ClockTime{18, 0},
			wantTitle: "CONCIERTO DE NAVIDAD",
		},
		{
			name:      "range with en dash",
			line:      "12:00 – 18:00 MERCADO NAVIDEÑO",
			wantStart: ClockTime{12, 0},
			wantEnd:   &ClockTime{18, 0},
			wantTitle: "MERCADO NAVIDEÑO",
		},
		{
			name:      "range with hyphen",
			line:      "10:00-14:00 TALLER INFANTIL",
			wantStart: ClockTime{10, 0},
			wantEnd:   &ClockTime{14, 0},
			wantTitle: "TALLER INFANTIL",
		},
		{
			name:      "range with word a",
			line:      "10:00 a 13:30 VISITA GUIADA",
			wantStart: ClockTime{10, 0},
			wantEnd:   &ClockTime{13, 30},
			wantTitle: "VISITA GUIADA",
		},
		{
			name:      "range with word hasta",
			line:      "20:00 hasta 23:00 GALA BENÉFICA",
			wantStart: ClockTime{20, 0},
			wantEnd:   &ClockTime{23, 0},
			wantTitle: "GALA BENÉFICA",
		},
		{
			name:      "interior whitespace collapsed in title",
			line:      "18:00 CONCIERTO   DE    NAVIDAD",
			wantStart: ClockTime{18, 0},
			wantTitle: "CONCIERTO DE NAVIDAD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			if got.Kind != KindTimedTitle {
				t.Fatalf("Classify(%q).Kind = %v, want KindTimedTitle", tt.line, got.Kind)
			}
			if got.Start != tt.wantStart {
				t.Errorf("start = %v, want %v", got.Start, tt.wantStart)
			}
			if (got.End == nil) != (tt.wantEnd == nil) {
				t.Fatalf("end = %v, want %v", got.End, tt.wantEnd)
			}
			if got.End != nil && *got.End != *tt.wantEnd {
				t.Errorf("end = %v, want %v", *got.End, *tt.wantEnd)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}

func TestClassifyInvalidTimesFallThrough(t *testing.T) {
	c, _ := testClassifier(t)

	tests := []struct {
		name string
		line string
		want Kind
	}{
		{"hour out of range", "25:00 FIESTA IMPOSIBLE", KindPlain},
		{"minute out of range", "18:75 FIESTA IMPOSIBLE", KindPlain},
		{"invalid end keeps start-only match", "18:00 – 25:00 FIESTA", KindTimedTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.line)
			if got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.line, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyRangeHeaders(t *testing.T) {
	c, loc := testClassifier(t)

	t.Run("explicit del hasta", func(t *testing.T) {
		got := c.Classify("DEL 18/12/25 HASTA 12/01/26")
		if got.Kind != KindRangeHeader {
			t.Fatalf("Kind = %v, want KindRangeHeader", got.Kind)
		}
		if got.UntilOnly {
			t.Error("UntilOnly = true, want false")
		}
		if want := date(loc, 2025, time.December, 18); !got.RangeStart.Equal(want) {
			t.Errorf("RangeStart = %v, want %v", got.RangeStart, want)
		}
		if want := date(loc, 2026, time.January, 12); !got.RangeEnd.Equal(want) {
			t.Errorf("RangeEnd = %v, want %v", got.RangeEnd, want)
		}
	})

	t.Run("hasta el", func(t *testing.T) {
		got := c.Classify("Hasta el 04/1/2026")
		if got.Kind != KindRangeHeader {
			t.Fatalf("Kind = %v, want KindRangeHeader", got.Kind)
		}
		if !got.UntilOnly {
			t.Error("UntilOnly = false, want true")
		}
		if want := date(loc, 2026, time.January, 4); !got.RangeEnd.Equal(want) {
			t.Errorf("RangeEnd = %v, want %v", got.RangeEnd, want)
		}
	})

	t.Run("bare hasta uppercase", func(t *testing.T) {
		got := c.Classify("HASTA 04/01/2026")
		if got.Kind != KindRangeHeader || !got.UntilOnly {
			t.Fatalf("got Kind=%v UntilOnly=%v, want range header with UntilOnly", got.Kind, got.UntilOnly)
		}
	})

	t.Run("hasta with invalid date falls through", func(t *testing.T) {
		got := c.Classify("HASTA 31/11/25")
		if got.Kind != KindPlain {
			t.Errorf("Kind = %v, want KindPlain", got.Kind)
		}
	})
}
