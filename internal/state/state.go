package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/rbright/waybar-schoolholidays/internal/schedule"
)

var ErrNotFound = errors.New("cache not found")

// Snapshot is the last schedule fetched successfully for a school year.
type Snapshot struct {
	SchoolYear string            `json:"schoolYear"`
	FetchedAt  time.Time         `json:"fetchedAt"`
	Periods    []schedule.Period `json:"periods"`
}

type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Store) Load(schoolYear string) (*Snapshot, error) {
	path := s.pathFor(schoolYear)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache file %s: %w", path, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode cache file %s: %w", path, err)
	}

	if snapshot.SchoolYear == "" {
		snapshot.SchoolYear = schoolYear
	}
	schedule.SortPeriods(snapshot.Periods)
	return &snapshot, nil
}

// Save replaces the cached schedule for a school year in one rename, so a
// reader sees either the previous snapshot or the new one.
func (s *Store) Save(schoolYear string, periods []schedule.Period, fetchedAt time.Time) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", s.dir, err)
	}

	if periods == nil {
		periods = []schedule.Period{}
	}
	snapshot := Snapshot{
		SchoolYear: schoolYear,
		FetchedAt:  fetchedAt.UTC(),
		Periods:    periods,
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache payload: %w", err)
	}

	return WriteFileAtomically(s.pathFor(schoolYear), append(payload, '\n'))
}

func (s *Store) pathFor(schoolYear string) string {
	name := strings.ReplaceAll(strings.TrimSpace(schoolYear), string(filepath.Separator), "_")
	return filepath.Join(s.dir, "schedule-"+name+".json")
}

func WriteFileAtomically(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
