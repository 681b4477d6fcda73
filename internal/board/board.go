package board

// Board is a snapshot of a project board. Lists and cards keep board order.
type Board struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Lists []List `json:"lists" yaml:"lists"`
}

type List struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Cards []Card `json:"cards" yaml:"cards"`
}

type Card struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Checklists  []Checklist `json:"checklists,omitempty" yaml:"checklists,omitempty"`
}

type Checklist struct {
	Name  string      `json:"name" yaml:"name"`
	Items []CheckItem `json:"items,omitempty" yaml:"items,omitempty"`
}

type CheckItem struct {
	Name string `json:"name" yaml:"name"`
	Done bool   `json:"done" yaml:"done"`
}

// FindList returns the list with the given id, or the first list named
// name when id is empty.
func (b Board) FindList(id, name string) (List, bool) {
	for _, l := range b.Lists {
		if id != "" {
			if l.ID == id {
				return l, true
			}
			continue
		}
		if l.Name == name {
			return l, true
		}
	}
	return List{}, false
}

// ListNames returns the list names in board order.
func (b Board) ListNames() []string {
	names := make([]string, 0, len(b.Lists))
	for _, l := range b.Lists {
		names = append(names, l.Name)
	}
	return names
}

// CardTitles returns every card title, list by list.
func (b Board) CardTitles() []string {
	var titles []string
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			titles = append(titles, c.Title)
		}
	}
	return titles
}

func (c Checklist) Completed() int {
	n := 0
	for _, item := range c.Items {
		if item.Done {
			n++
		}
	}
	return n
}
