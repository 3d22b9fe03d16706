package schedule_test

import (
	"encoding/json"
	"testing"

	"github.com/rafaeldutra/agenda-api/internal/schedule"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    schedule.TimeOfDay
		wantErr bool
	}{
		{"09:00", 9 * 60, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{"14:30:00", 14*60 + 30, false}, // MySQL TIME scan format
		{" 10:00 ", 10 * 60, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := schedule.ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTimeOfDayRendering(t *testing.T) {
	v, err := schedule.ParseClock("09:05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := v.String(); got != "09:05" {
		t.Errorf("String() = %q, want %q", got, "09:05")
	}
	if got := v.SQL(); got != "09:05:00" {
		t.Errorf("SQL() = %q, want %q", got, "09:05:00")
	}
}

func TestTimeOfDayAdd(t *testing.T) {
	tests := []struct {
		start   string
		minutes int
		want    string
	}{
		{"09:00", 45, "09:45"},
		{"09:00", 60, "10:00"},
		{"16:00", 90, "17:30"},
		{"23:30", 60, "00:30"}, // wraps past midnight
	}
	for _, tt := range tests {
		start, err := schedule.ParseClock(tt.start)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.start, err)
		}
		if got := start.Add(tt.minutes).String(); got != tt.want {
			t.Errorf("%s + %dmin = %s, want %s", tt.start, tt.minutes, got, tt.want)
		}
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	v, _ := schedule.ParseClock("14:30")
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"14:30"` {
		t.Errorf("marshal = %s, want %q", b, `"14:30"`)
	}
	var back schedule.TimeOfDay
	if err := json.Unmarshal([]byte(`"15:00:00"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "15:00" {
		t.Errorf("unmarshal = %s, want 15:00", back)
	}
	if err := json.Unmarshal([]byte(`"nope"`), &back); err == nil {
		t.Error("expected error for malformed clock value")
	}
}

func TestParseTemplateSortsAndDedupes(t *testing.T) {
	tpl, err := schedule.ParseTemplate([]string{"14:00", "09:00", "14:00", "10:00"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := tpl.Strings()
	want := []string{"09:00", "10:00", "14:00"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParseTemplateRejectsMalformed(t *testing.T) {
	if _, err := schedule.ParseTemplate([]string{"09:00", "25:00"}); err == nil {
		t.Error("expected error for out-of-range hour")
	}
}

func TestParseTemplateEmpty(t *testing.T) {
	tpl, err := schedule.ParseTemplate(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(tpl) != 0 {
		t.Errorf("expected empty template, got %v", tpl.Strings())
	}
	if free := tpl.Free(nil); len(free) != 0 {
		t.Errorf("empty template must have no free slots, got %v", free)
	}
}

func TestDefaultTimes(t *testing.T) {
	tpl := schedule.MustParseTemplate(schedule.DefaultTimes)
	want := []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}
	got := tpl.Strings()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFree(t *testing.T) {
	tpl := schedule.MustParseTemplate(schedule.DefaultTimes)

	taken := []schedule.TimeOfDay{mustClock(t, "10:00"), mustClock(t, "15:00")}
	free := tpl.Free(taken)
	want := []string{"09:00", "11:00", "14:00", "16:00"}
	if len(free) != len(want) {
		t.Fatalf("free = %v, want %v", free, want)
	}
	for i, v := range free {
		if v.String() != want[i] {
			t.Fatalf("free = %v, want %v", free, want)
		}
	}

	// Taken values outside the template are ignored.
	free = tpl.Free([]schedule.TimeOfDay{mustClock(t, "12:00")})
	if len(free) != len(tpl) {
		t.Errorf("off-template taken value changed the result: %v", free)
	}

	// A fully booked day has no free slots.
	free = tpl.Free([]schedule.TimeOfDay(tpl))
	if len(free) != 0 {
		t.Errorf("fully booked day should be empty, got %v", free)
	}
}

func mustClock(t *testing.T, s string) schedule.TimeOfDay {
	t.Helper()
	v, err := schedule.ParseClock(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}
