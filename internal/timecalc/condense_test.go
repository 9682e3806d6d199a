package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

func at(day, hour, min int) time.Time {
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

func closed(in, out time.Time, log ...string) model.Punch {
	return model.Punch{In: in, Out: &out, Log: log}
}

func date(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func TestTimesToDatesDropsOpenPunches(t *testing.T) {
	punches := []model.Punch{
		closed(at(2, 9, 0), at(2, 10, 0), "a"),
		{In: at(2, 11, 0), Log: []string{"open"}},
		closed(at(3, 9, 0), at(3, 9, 30), "b"),
	}
	got := timecalc.TimesToDates(punches)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Log[0] != "a" || got[1].Log[0] != "b" {
		t.Errorf("order not preserved: %+v", got)
	}
	if got[0].Hours != 1 || got[1].Hours != 0.5 {
		t.Errorf("hours = %v, %v, want 1, 0.5", got[0].Hours, got[1].Hours)
	}
}

func TestTimesToDatesUsesInDate(t *testing.T) {
	punches := []model.Punch{closed(at(2, 23, 0), at(3, 1, 0), "late")}
	got := timecalc.TimesToDates(punches)
	if !got[0].Date.Equal(date(2)) {
		t.Errorf("date = %v, want %v", got[0].Date, date(2))
	}
	if got[0].Hours != 2 {
		t.Errorf("hours = %v, want 2", got[0].Hours)
	}
}

func TestTimesToDatesNegativeDuration(t *testing.T) {
	got := timecalc.TimesToDates([]model.Punch{closed(at(2, 10, 0), at(2, 9, 0))})
	if got[0].Hours != -1 {
		t.Errorf("hours = %v, want -1", got[0].Hours)
	}
}

func TestGroupDateDataRounding(t *testing.T) {
	tests := []struct {
		hours []float64
		want  float64
	}{
		{[]float64{1.666666666}, 1.67},
		{[]float64{0.333333333, 0.333333333, 0.333333333}, 1},
		{[]float64{0.125}, 0.13},
		{[]float64{0.004, 0.004}, 0.01},
		{[]float64{1.5, 1.0}, 2.5},
	}
	for _, tt := range tests {
		var entries []model.DayHours
		for _, h := range tt.hours {
			entries = append(entries, model.DayHours{Date: date(2), Hours: h, Log: []string{"x"}})
		}
		got := timecalc.GroupDateData(entries)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Hours != tt.want {
			t.Errorf("GroupDateData(%v) hours = %v, want %v", tt.hours, got[0].Hours, tt.want)
		}
	}
}

func TestGroupDateDataChronological(t *testing.T) {
	entries := []model.DayHours{
		{Date: date(5), Hours: 1, Log: []string{"c"}},
		{Date: date(1), Hours: 1, Log: []string{"a"}},
		{Date: date(3), Hours: 1, Log: []string{"b"}},
	}
	got := timecalc.GroupDateData(entries)
	want := []time.Time{date(1), date(3), date(5)}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Date.Equal(want[i]) {
			t.Errorf("got[%d].Date = %v, want %v", i, got[i].Date, want[i])
		}
	}
}

func TestGroupDateDataNotesOrder(t *testing.T) {
	entries := []model.DayHours{
		{Date: date(2), Hours: 1, Log: []string{"a", "b"}},
		{Date: date(4), Hours: 1, Log: []string{"other"}},
		{Date: date(2), Hours: 1, Log: []string{"c", "d"}},
		{Date: date(2), Hours: 1, Log: []string{"e", "f"}},
	}
	got := timecalc.GroupDateData(entries)
	want := "a\nb\n--------------------\nc\nd\n--------------------\ne\nf"
	if got[0].Notes != want {
		t.Errorf("notes = %q, want %q", got[0].Notes, want)
	}
	if got[0].Hours != 3 {
		t.Errorf("hours = %v, want 3", got[0].Hours)
	}
}

func TestCondenseTimeDataScenario(t *testing.T) {
	punches := []model.Punch{
		closed(at(2, 9, 0), at(2, 10, 30), "in", "out"),
		closed(at(2, 13, 0), at(2, 14, 0), "after lunch"),
		closed(at(3, 9, 0), at(3, 9, 30), "short"),
		{In: at(3, 11, 0)},
	}
	got := timecalc.CondenseTimeData(punches)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Date.Equal(date(2)) || got[0].Hours != 2.5 {
		t.Errorf("day 1 = %v %v, want %v 2.5", got[0].Date, got[0].Hours, date(2))
	}
	if !got[1].Date.Equal(date(3)) || got[1].Hours != 0.5 {
		t.Errorf("day 2 = %v %v, want %v 0.5", got[1].Date, got[1].Hours, date(3))
	}
	if got[0].Notes != "in\nout\n--------------------\nafter lunch" {
		t.Errorf("day 1 notes = %q", got[0].Notes)
	}
}

func TestCondenseTimeDataEmpty(t *testing.T) {
	if got := timecalc.CondenseTimeData(nil); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
