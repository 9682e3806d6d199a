package model

import "time"

// Punch is one raw punch-clock event. A punch without Out is still open.
type Punch struct {
	ID      string     `json:"id"`
	Project string     `json:"project"`
	In      time.Time  `json:"in"`
	Out     *time.Time `json:"out"`
	Log     []string   `json:"log"`
}

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Date    string  `json:"date"`
	Punches []Punch `json:"punches"`
}

// DayHours is a closed punch reduced to its calendar date and length.
type DayHours struct {
	Date  time.Time
	Hours float64
	Log   []string
}

// DaySummary is the total time and notes of every punch on one date.
type DaySummary struct {
	Date  time.Time
	Hours float64
	Notes string
}
