package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const baseURL = "https://api.trello.com/1"

// Trello allows 100 requests per 10 seconds per token.
const (
	requestInterval = 100 * time.Millisecond
	requestBurst    = 10
)

type Client struct {
	key        string
	token      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(key, token string) *Client {
	return &Client{
		key:        key,
		token:      token,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(requestInterval), requestBurst),
	}
}

// SetBaseURL points the client at another API root, e.g. a test server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type BoardResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Lists      []ListResponse      `json:"lists"`
	Cards      []CardResponse      `json:"cards"`
	Checklists []ChecklistResponse `json:"checklists"`
}

type ListResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`
}

type CardResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Desc   string  `json:"desc"`
	IDList string  `json:"idList"`
	Pos    float64 `json:"pos"`
	Closed bool    `json:"closed"`
}

type ChecklistResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	IDCard     string          `json:"idCard"`
	Pos        float64         `json:"pos"`
	CheckItems []CheckItemResp `json:"checkItems"`
}

type CheckItemResp struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	State string  `json:"state"`
	Pos   float64 `json:"pos"`
}

// GetBoard fetches a board with its open lists, open cards and all
// checklists in one request.
func (c *Client) GetBoard(ctx context.Context, boardID string) (*BoardResponse, error) {
	params := url.Values{}
	params.Set("fields", "name")
	params.Set("lists", "open")
	params.Set("list_fields", "name,pos,closed")
	params.Set("cards", "open")
	params.Set("card_fields", "name,desc,idList,pos,closed")
	params.Set("checklists", "all")
	params.Set("checklist_fields", "name,idCard,pos")

	var result BoardResponse
	if err := c.do(ctx, http.MethodGet, "/boards/"+url.PathEscape(boardID), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetCardDescription(ctx context.Context, cardID string) (string, error) {
	params := url.Values{}
	params.Set("fields", "desc")

	var result struct {
		ID   string `json:"id"`
		Desc string `json:"desc"`
	}
	if err := c.do(ctx, http.MethodGet, "/cards/"+url.PathEscape(cardID), params, &result); err != nil {
		return "", err
	}
	return result.Desc, nil
}

func (c *Client) SetCardDescription(ctx context.Context, cardID, desc string) error {
	params := url.Values{}
	params.Set("value", desc)
	return c.do(ctx, http.MethodPut, "/cards/"+url.PathEscape(cardID)+"/desc", params, nil)
}

func (c *Client) HealthCheck(ctx context.Context) error {
	params := url.Values{}
	params.Set("fields", "id")
	if err := c.do(ctx, http.MethodGet, "/members/me", params, nil); err != nil {
		return fmt.Errorf("API health check failed: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.key)
	params.Set("token", c.token)
	u := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<12))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}
