package timecalc

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/freshtrack/internal/model"
)

// NoteSeparator sits between the notes of two punches on the same day.
const NoteSeparator = "--------------------"

// CondenseTimeData reduces raw punches to one summary per calendar date.
func CondenseTimeData(punches []model.Punch) []model.DaySummary {
	return GroupDateData(TimesToDates(punches))
}

// TimesToDates turns each closed punch into its date (taken from In) and
// its unrounded length in hours. Open punches are dropped. A punch whose
// Out precedes In yields negative hours.
func TimesToDates(punches []model.Punch) []model.DayHours {
	out := make([]model.DayHours, 0, len(punches))
	for _, p := range punches {
		if p.Out == nil {
			continue
		}
		out = append(out, model.DayHours{
			Date:  DateOf(p.In),
			Hours: SecsToHours(p.Out.Sub(p.In).Seconds()),
			Log:   p.Log,
		})
	}
	return out
}

// GroupDateData merges entries sharing a date. Summaries come back in
// ascending date order. Hours are summed first and then rounded to two
// places, half away from zero. Notes keep the input order of the entries.
func GroupDateData(entries []model.DayHours) []model.DaySummary {
	groups := map[string][]model.DayHours{}
	var keys []string
	for _, e := range entries {
		key := e.Date.Format("2006-01-02")
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], e)
	}
	sort.Strings(keys)

	summaries := make([]model.DaySummary, 0, len(keys))
	for _, key := range keys {
		members := groups[key]
		var total float64
		notes := make([]string, 0, len(members))
		for _, m := range members {
			total += m.Hours
			notes = append(notes, strings.Join(m.Log, "\n"))
		}
		summaries = append(summaries, model.DaySummary{
			Date:  members[0].Date,
			Hours: RoundHours(total),
			Notes: strings.Join(notes, "\n"+NoteSeparator+"\n"),
		})
	}
	return summaries
}

// RoundHours rounds h to two decimal places, half away from zero.
func RoundHours(h float64) float64 {
	return decimal.NewFromFloat(h).Round(2).InexactFloat64()
}
