package burndown

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrNoSeries = errors.New("no burndown data found")

var seriesFile = regexp.MustCompile(`^burndown-data-(\d+)\.yaml$`)

// Store keeps one YAML file per sprint in a directory:
// burndown-data-01.yaml, burndown-data-02.yaml, ...
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) Path(sprint int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("burndown-data-%02d.yaml", sprint))
}

// Init creates the file of a new sprint. It refuses to overwrite one.
func (s *Store) Init(meta Meta) (*Series, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	path := s.Path(meta.Sprint)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("burndown data for sprint %d already exists: %s", meta.Sprint, path)
	}

	series := &Series{Meta: meta, Days: []DataPoint{}}
	if err := s.Save(series); err != nil {
		return nil, err
	}
	return series, nil
}

// Sprints lists the sprint numbers that have a file, ascending.
func (s *Store) Sprints() ([]int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read burndown directory: %w", err)
	}

	var sprints []int
	for _, e := range entries {
		m := seriesFile.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		sprints = append(sprints, n)
	}
	sort.Ints(sprints)
	return sprints, nil
}

func (s *Store) Load(sprint int) (*Series, error) {
	path := s.Path(sprint)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read burndown data: %w", err)
	}

	var series Series
	if err := yaml.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if series.Meta.Sprint == 0 {
		series.Meta.Sprint = sprint
	}
	return &series, nil
}

// Latest loads the highest numbered sprint.
func (s *Store) Latest() (*Series, error) {
	sprints, err := s.Sprints()
	if err != nil {
		return nil, err
	}
	if len(sprints) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSeries, s.Dir)
	}
	return s.Load(sprints[len(sprints)-1])
}

// StartSprint opens the sprint after prev, tracking the same lists.
func (s *Store) StartSprint(prev *Series) (*Series, error) {
	meta := prev.Meta
	meta.Sprint++
	meta.Lists = append([]ListRef(nil), prev.Meta.Lists...)
	return s.Init(meta)
}

// Save writes the series through a temp file so a failed write never
// leaves a truncated file behind.
func (s *Store) Save(series *Series) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create burndown directory: %w", err)
	}

	data, err := yaml.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to encode burndown data: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "burndown-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write burndown data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path(series.Meta.Sprint)); err != nil {
		return fmt.Errorf("failed to save burndown data: %w", err)
	}
	return nil
}
