package burndown

import "fmt"

// Meta describes a sprint's series. Tracked lists are fixed when the
// sprint starts; every sample carries a value for each of them.
type Meta struct {
	BoardID string    `yaml:"board_id" json:"board_id"`
	Sprint  int       `yaml:"sprint" json:"sprint"`
	Lists   []ListRef `yaml:"tracked_lists" json:"tracked_lists"`
}

func (m Meta) Validate() error {
	if m.Sprint < 1 {
		return fmt.Errorf("invalid sprint number %d", m.Sprint)
	}
	if len(m.Lists) == 0 {
		return ErrMissingTrackedList
	}
	seen := make(map[string]bool, len(m.Lists))
	for _, ref := range m.Lists {
		if ref.Name == "" {
			return fmt.Errorf("tracked list %q has no name", ref.ID)
		}
		if seen[ref.Name] {
			return fmt.Errorf("list %q is tracked twice", ref.Name)
		}
		seen[ref.Name] = true
	}
	return nil
}

// Series is the persisted burndown of one sprint, oldest sample first.
type Series struct {
	Meta Meta        `yaml:"meta" json:"meta"`
	Days []DataPoint `yaml:"days" json:"days"`
}

// Append adds p at the end of the series. A sample taken on the same date
// as the last one replaces it. Tracked lists missing from p are filled
// with 0.
func (s *Series) Append(p DataPoint) {
	lists := make(map[string]int, len(s.Meta.Lists))
	for _, ref := range s.Meta.Lists {
		lists[ref.Name] = p.Lists[ref.Name]
	}
	p.Lists = lists

	if n := len(s.Days); n > 0 && s.Days[n-1].Date == p.Date {
		s.Days[n-1] = p
		return
	}
	s.Days = append(s.Days, p)
}

func (s *Series) Last() (DataPoint, bool) {
	if len(s.Days) == 0 {
		return DataPoint{}, false
	}
	return s.Days[len(s.Days)-1], true
}

// TableRow is one sample flattened for tabular exports.
type TableRow struct {
	Date   string
	Values []int
}

// Table lays the series out as columns: date, one per tracked list in
// tracking order, remaining, done.
func (s *Series) Table() ([]string, []TableRow) {
	header := []string{"Date"}
	for _, ref := range s.Meta.Lists {
		header = append(header, ref.Name)
	}
	header = append(header, "Remaining", "Done")

	rows := make([]TableRow, 0, len(s.Days))
	for _, d := range s.Days {
		values := make([]int, 0, len(s.Meta.Lists)+2)
		for _, ref := range s.Meta.Lists {
			values = append(values, d.Lists[ref.Name])
		}
		values = append(values, d.Remaining, d.Done)
		rows = append(rows, TableRow{Date: d.Date, Values: values})
	}
	return header, rows
}
