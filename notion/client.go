package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultHost is the public API endpoint; tests point the client at a
	// local fake instead.
	DefaultHost = "https://api.notion.com"

	apiVersion = "2022-06-28"

	// DefaultPageSize is the query page size used when the caller passes 0.
	DefaultPageSize = 100
)

// Client is a capability-bounded HTTP client for the remote document
// workspace. It is constructed fresh per sync pass (one credential per
// integration) and holds no state across passes. It never retries
// internally; backoff on ErrRateLimited is the caller's concern.
type Client struct {
	host   string
	token  string
	client *http.Client
}

func NewClient(host string, token string) *Client {
	if host == "" {
		host = DefaultHost
	}
	return &Client{
		host:   host,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type searchRequest struct {
	Filter      *searchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
}

type searchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}

type databaseObject struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title"`
	Properties map[string]schemaProperty `json:"properties"`
}

type schemaProperty struct {
	ID   string       `json:"id"`
	Type PropertyType `json:"type"`
}

type listResponse struct {
	Results    json.RawMessage `json:"results"`
	HasMore    bool            `json:"has_more"`
	NextCursor string          `json:"next_cursor"`
}

// ListDatabases returns every database the credential can see, following
// pagination until exhausted. Also used as the round-trip credential check
// when an integration is registered.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var databases []Database
	cursor := ""
	for {
		req := searchRequest{
			Filter:      &searchFilter{Value: "database", Property: "object"},
			StartCursor: cursor,
		}
		var page listResponse
		if err := c.do(ctx, http.MethodPost, "/v1/search", req, &page); err != nil {
			return nil, err
		}
		var results []databaseObject
		if err := json.Unmarshal(page.Results, &results); err != nil {
			return nil, fmt.Errorf("failed to parse search results: %w", err)
		}
		for _, result := range results {
			databases = append(databases, Database{
				ID:    result.ID,
				Title: plainText(result.Title),
			})
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return databases, nil
}

// GetSchema fetches a database's declared property types.
func (c *Client) GetSchema(ctx context.Context, databaseID string) (Schema, error) {
	var db databaseObject
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	schema := make(Schema, len(db.Properties))
	for name, property := range db.Properties {
		schema[name] = property.Type
	}
	return schema, nil
}

type queryRequest struct {
	PageSize    int    `json:"page_size,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// QueryDatabase returns the database's pages, transparently following cursor
// pagination until exhausted or maxRecords is reached (0 means no cap).
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, pageSize int, maxRecords int) ([]Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var pages []Page
	cursor := ""
	for {
		req := queryRequest{PageSize: pageSize, StartCursor: cursor}
		var page listResponse
		if err := c.do(ctx, http.MethodPost, "/v1/databases/"+databaseID+"/query", req, &page); err != nil {
			return nil, err
		}
		var results []Page
		if err := json.Unmarshal(page.Results, &results); err != nil {
			return nil, fmt.Errorf("failed to parse query results: %w", err)
		}
		pages = append(pages, results...)
		if maxRecords > 0 && len(pages) >= maxRecords {
			return pages[:maxRecords], nil
		}
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return pages, nil
}

type createPageRequest struct {
	Parent     pageParent               `json:"parent"`
	Properties map[string]PropertyValue `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// CreatePage creates one page in the given database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]PropertyValue) (*Page, error) {
	req := createPageRequest{
		Parent:     pageParent{DatabaseID: databaseID},
		Properties: properties,
	}
	var page Page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var reader *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(reader).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = resp.Status
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
