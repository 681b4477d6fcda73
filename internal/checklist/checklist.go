package checklist

import "github.com/Afrawles/sprintboard/internal/board"

// Flatten returns the name of every checklist on the board, visiting lists,
// cards and checklists in board order. Repeated names are kept.
func Flatten(b board.Board) []string {
	var names []string
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			for _, cl := range c.Checklists {
				names = append(names, cl.Name)
			}
		}
	}
	return names
}

// Summary is the completion state of one checklist.
type Summary struct {
	List  string `json:"list"`
	Card  string `json:"card"`
	Name  string `json:"name"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

func (s Summary) Complete() bool {
	return s.Done == s.Total
}

// Progress walks the board like Flatten and reports item completion.
func Progress(b board.Board) []Summary {
	var out []Summary
	for _, l := range b.Lists {
		for _, c := range l.Cards {
			for _, cl := range c.Checklists {
				out = append(out, Summary{
					List:  l.Name,
					Card:  c.Title,
					Name:  cl.Name,
					Done:  cl.Completed(),
					Total: len(cl.Items),
				})
			}
		}
	}
	return out
}
