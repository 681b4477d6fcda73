package trello

import (
	"context"
	"sort"

	"github.com/Afrawles/sprintboard/internal/board"
	"github.com/Afrawles/sprintboard/internal/report"
)

type TrelloSource struct {
	Client *Client
}

func NewTrelloSource(key, token string) *TrelloSource {
	return &TrelloSource{
		Client: NewClient(key, token),
	}
}

var _ report.BoardSource = (*TrelloSource)(nil)

func (s *TrelloSource) Name() string {
	return "Trello"
}

func (s *TrelloSource) HealthCheck(ctx context.Context) error {
	return s.Client.HealthCheck(ctx)
}

func (s *TrelloSource) FetchBoard(ctx context.Context, boardID string) (board.Board, error) {
	resp, err := s.Client.GetBoard(ctx, boardID)
	if err != nil {
		return board.Board{}, err
	}
	return toBoard(resp), nil
}

// toBoard orders lists, cards, checklists and check items by their board
// position and nests them. Closed lists and cards are dropped, and so are
// cards or checklists pointing at something not in the response.
func toBoard(resp *BoardResponse) board.Board {
	lists := append([]ListResponse(nil), resp.Lists...)
	sort.SliceStable(lists, func(i, j int) bool { return lists[i].Pos < lists[j].Pos })

	cards := append([]CardResponse(nil), resp.Cards...)
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Pos < cards[j].Pos })

	checklists := append([]ChecklistResponse(nil), resp.Checklists...)
	sort.SliceStable(checklists, func(i, j int) bool { return checklists[i].Pos < checklists[j].Pos })

	byCard := make(map[string][]board.Checklist)
	for _, cl := range checklists {
		items := append([]CheckItemResp(nil), cl.CheckItems...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].Pos < items[j].Pos })

		checklist := board.Checklist{Name: cl.Name}
		for _, item := range items {
			checklist.Items = append(checklist.Items, board.CheckItem{
				Name: item.Name,
				Done: item.State == "complete",
			})
		}
		byCard[cl.IDCard] = append(byCard[cl.IDCard], checklist)
	}

	byList := make(map[string][]board.Card)
	for _, c := range cards {
		if c.Closed {
			continue
		}
		byList[c.IDList] = append(byList[c.IDList], board.Card{
			ID:          c.ID,
			Title:       c.Name,
			Description: c.Desc,
			Checklists:  byCard[c.ID],
		})
	}

	b := board.Board{ID: resp.ID, Name: resp.Name}
	for _, l := range lists {
		if l.Closed {
			continue
		}
		b.Lists = append(b.Lists, board.List{
			ID:    l.ID,
			Name:  l.Name,
			Cards: byList[l.ID],
		})
	}
	return b
}
