package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arloliu/grouper/types"
)

// Notion API defaults.
const (
	DefaultNotionBaseURL = "https://api.notion.com"
	DefaultNotionVersion = "2022-06-28"
	DefaultNotionTimeout = 10 * time.Second
)

// maxNotionErrorBody caps how much of an error response is kept in the error message.
const maxNotionErrorBody = 4 << 10

// NotionConfig configures the Notion roster provider.
type NotionConfig struct {
	// BaseURL is the API root. Default: https://api.notion.com
	BaseURL string
	// DatabaseID identifies the roster database.
	DatabaseID string
	// SecretKey is the integration token sent as a Bearer credential.
	SecretKey string
	// Version is sent as the Notion-Version header. Default: 2022-06-28
	Version string
	// HTTPClient overrides the HTTP client. Default: client with DefaultNotionTimeout
	HTTPClient *http.Client
}

// Notion implements a roster provider that queries a Notion database.
//
// Each database row maps to a person: the title property "Name" is the name,
// and the rich-text properties "job" and "department" are the labels. Rows
// with an empty title are skipped. Paginated results are followed until the
// API reports no more pages.
type Notion struct {
	cfg    NotionConfig
	client *http.Client
}

var _ types.RosterProvider = (*Notion)(nil)

// NewNotion creates a Notion roster provider.
//
// Parameters:
//   - cfg: Provider configuration; DatabaseID and SecretKey are required
//
// Returns:
//   - *Notion: Initialized provider
//   - error: ErrInvalidConfig when required fields are missing
func NewNotion(cfg NotionConfig) (*Notion, error) {
	if cfg.DatabaseID == "" {
		return nil, fmt.Errorf("%w: notion database id is required", types.ErrInvalidConfig)
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: notion secret key is required", types.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNotionBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultNotionVersion
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultNotionTimeout}
	}

	return &Notion{cfg: cfg, client: client}, nil
}

type notionText struct {
	PlainText string `json:"plain_text"`
}

type notionPage struct {
	Properties struct {
		Name struct {
			Title []notionText `json:"title"`
		} `json:"Name"`
		Job struct {
			RichText []notionText `json:"rich_text"`
		} `json:"job"`
		Department struct {
			RichText []notionText `json:"rich_text"`
		} `json:"department"`
	} `json:"properties"`
}

type notionQueryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

type notionQueryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
}

// ListPeople queries the database and maps its rows to people.
//
// Returns:
//   - []types.Person: People in query result order
//   - error: Transport error, or ErrNotionRequest carrying the response body for non-2xx statuses
func (n *Notion) ListPeople(ctx context.Context) ([]types.Person, error) {
	people := []types.Person{}
	cursor := ""

	for {
		resp, err := n.query(ctx, cursor)
		if err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			p := types.Person{
				Name:       firstPlainText(page.Properties.Name.Title),
				Job:        firstPlainText(page.Properties.Job.RichText),
				Department: firstPlainText(page.Properties.Department.RichText),
			}
			if p.Validate() != nil {
				continue
			}
			people = append(people, p)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return people, nil
		}
		cursor = resp.NextCursor
	}
}

func (n *Notion) query(ctx context.Context, cursor string) (*notionQueryResponse, error) {
	endpoint := strings.TrimRight(n.cfg.BaseURL, "/") + "/v1/databases/" + url.PathEscape(n.cfg.DatabaseID) + "/query"

	body, err := json.Marshal(notionQueryRequest{StartCursor: cursor})
	if err != nil {
		return nil, fmt.Errorf("failed to encode notion query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.SecretKey)
	req.Header.Set("Notion-Version", n.cfg.Version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query notion database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxNotionErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", types.ErrNotionRequest, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out notionQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode notion response: %w", err)
	}

	return &out, nil
}

func firstPlainText(texts []notionText) string {
	if len(texts) == 0 {
		return ""
	}

	return texts[0].PlainText
}
