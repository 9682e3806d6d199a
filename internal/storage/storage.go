// Package storage keeps the local punch log: one JSON file per day.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

// BaseDir returns the default punch directory (~/.freshtrack/punches).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".freshtrack", "punches"), nil
}

// dayFilePath returns the path for the given date's JSON file.
func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	path := dayFilePath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: t.Format("2006-01-02"), Punches: []model.Punch{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	path := dayFilePath(base, t)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// FindOpenPunch searches the last week of day files, most recent first, for
// an open punch of project. An empty project matches any project.
func FindOpenPunch(base, project string, now time.Time) (*model.Punch, error) {
	for i := 0; i < 7; i++ {
		df, err := LoadDay(base, now.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		for j := len(df.Punches) - 1; j >= 0; j-- {
			p := df.Punches[j]
			if p.Out == nil && (project == "" || p.Project == project) {
				return &p, nil
			}
		}
	}
	return nil, nil
}

// SavePunch replaces or appends a punch in the day file of its In time.
func SavePunch(base string, punch model.Punch) error {
	df, err := LoadDay(base, punch.In)
	if err != nil {
		return err
	}
	for i, p := range df.Punches {
		if p.ID == punch.ID {
			df.Punches[i] = punch
			return SaveDay(base, punch.In, df)
		}
	}
	df.Punches = append(df.Punches, punch)
	return SaveDay(base, punch.In, df)
}

// LoadRange loads all punches with In in [from, to] inclusive, by day file.
func LoadRange(base string, from, to time.Time) ([]model.Punch, error) {
	var punches []model.Punch
	for d := timecalc.StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		df, err := LoadDay(base, d)
		if err != nil {
			return nil, err
		}
		punches = append(punches, df.Punches...)
	}
	return punches, nil
}

// LoadAll loads every punch in the store in day-file order.
func LoadAll(base string) ([]model.Punch, error) {
	paths, err := filepath.Glob(filepath.Join(base, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "[0-9][0-9].json"))
	if err != nil {
		return nil, fmt.Errorf("storage error listing %s: %w", base, err)
	}
	sort.Strings(paths)

	var punches []model.Punch
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("storage error reading %s: %w", path, err)
		}
		var df model.DayFile
		if err := json.Unmarshal(data, &df); err != nil {
			return nil, fmt.Errorf("corrupt JSON in %s: %w", path, err)
		}
		punches = append(punches, df.Punches...)
	}
	return punches, nil
}
