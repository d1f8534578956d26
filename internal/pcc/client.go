package pcc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/logger"
)

// GraphQL errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrGraphQLError         = errors.New("graphql error")
	ErrNoData               = errors.New("no data in response")
)

// Ensure Client implements Source.
var _ Source = (*Client)(nil)

// Client is a GraphQL client for a single content-cloud site.
type Client struct {
	httpClient *http.Client
	endpoint   string
	siteID     string
	token      string
	logger     *logger.Logger
}

type ClientOptions struct {
	Endpoint string
	SiteID   string
	Token    string
	Timeout  time.Duration
	// HTTPClient overrides the default client; Timeout is ignored then.
	HTTPClient *http.Client
}

func NewClient(opt ClientOptions, log *logger.Logger) *Client {
	hc := opt.HTTPClient
	if hc == nil {
		timeout := opt.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: hc,
		endpoint:   strings.TrimRight(opt.Endpoint, "/"),
		siteID:     opt.SiteID,
		token:      opt.Token,
		logger:     log,
	}
}

type graphQLRequest struct {
	Variables map[string]any `json:"variables,omitempty"`
	Query     string         `json:"query"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

func (c *Client) queryURL() string {
	return fmt.Sprintf("%s/sites/%s/query", c.endpoint, c.siteID)
}

// execute posts query and decodes the data member into out.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) (err error) {
	if c.logger != nil {
		c.logger.Debug("graphql query", "query", firstLine(query), "variables", variables)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.queryURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if grant := GrantFrom(ctx); grant != "" {
		req.Header.Set("Authorization", "Bearer "+grant)
	} else if c.token != "" {
		req.Header.Set("PCC-TOKEN", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	// Limit response size to 10MB
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Error("graphql request failed", "status", resp.StatusCode, "body", string(raw))
		}
		return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode, string(raw))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(raw, &gqlResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrGraphQLError, gqlResp.Errors[0].Message)
	}
	if len(gqlResp.Data) == 0 || bytes.Equal(gqlResp.Data, []byte("null")) {
		return ErrNoData
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

func firstLine(q string) string {
	q = strings.TrimSpace(q)
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		return q[:i]
	}
	return q
}

const articleFields = `
    id
    slug
    title
    tags
    metadata
    snippet
    content
    publishingLevel
    publishStatus
`

// ArticleQuery looks a single article up by id or slug.
const ArticleQuery = `query GetArticle($id: String, $slug: String, $publishingLevel: PublishingLevel, $contentType: ContentType) {
  article(id: $id, slug: $slug, publishingLevel: $publishingLevel, contentType: $contentType) {` + articleFields + `  }
}
`

// RecommendedArticlesQuery lists articles related to an article id.
const RecommendedArticlesQuery = `query GetRecommendedArticles($id: String!) {
  recommendedArticles(id: $id) {` + articleFields + `  }
}
`

// ArticlesQuery lists articles filtered by level and status.
const ArticlesQuery = `query ListArticles($publishingLevel: PublishingLevel, $publishStatus: PublishStatus, $contentType: ContentType) {
  articles(publishingLevel: $publishingLevel, publishStatus: $publishStatus, contentType: $contentType) {` + articleFields + `  }
}
`

type wireArticle struct {
	ID              string           `json:"id"`
	Slug            *string          `json:"slug"`
	Title           string           `json:"title"`
	Tags            []string         `json:"tags"`
	Metadata        content.Metadata `json:"metadata"`
	Snippet         *string          `json:"snippet"`
	Content         *string          `json:"content"`
	PublishingLevel string           `json:"publishingLevel"`
	PublishStatus   string           `json:"publishStatus"`
}

func (w wireArticle) toArticle() content.Article {
	return content.Article{
		ID:              w.ID,
		Slug:            deref(w.Slug),
		Title:           w.Title,
		Tags:            w.Tags,
		Metadata:        w.Metadata,
		Snippet:         deref(w.Snippet),
		Content:         deref(w.Content),
		PublishingLevel: content.PublishingLevel(w.PublishingLevel),
		PublishStatus:   content.PublishStatus(strings.ToLower(w.PublishStatus)),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *Client) article(ctx context.Context, vars map[string]any) (*content.Article, error) {
	var data struct {
		Article *wireArticle `json:"article"`
	}
	if err := c.execute(ctx, ArticleQuery, vars, &data); err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, nil
		}
		return nil, err
	}
	if data.Article == nil {
		return nil, nil
	}
	a := data.Article.toArticle()
	return &a, nil
}

// ArticleBySlugOrID tries the identifier as a slug first, then as an id.
func (c *Client) ArticleBySlugOrID(ctx context.Context, identifier string, level content.PublishingLevel) (*content.Article, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	a, err := c.article(ctx, map[string]any{
		"slug":            identifier,
		"publishingLevel": string(level),
		"contentType":     "TREE_PANTHEON_V2",
	})
	if err != nil || a != nil {
		return a, err
	}
	return c.article(ctx, map[string]any{
		"id":              identifier,
		"publishingLevel": string(level),
		"contentType":     "TREE_PANTHEON_V2",
	})
}

func (c *Client) RecommendedArticles(ctx context.Context, articleID string) ([]content.Article, error) {
	var data struct {
		RecommendedArticles []wireArticle `json:"recommendedArticles"`
	}
	if err := c.execute(ctx, RecommendedArticlesQuery, map[string]any{"id": articleID}, &data); err != nil {
		return nil, err
	}
	return toArticles(data.RecommendedArticles), nil
}

func (c *Client) AllArticles(ctx context.Context, level content.PublishingLevel, status content.PublishStatus) ([]content.Article, error) {
	var data struct {
		Articles []wireArticle `json:"articles"`
	}
	vars := map[string]any{
		"publishingLevel": string(level),
		"publishStatus":   strings.ToUpper(string(status)),
		"contentType":     "TREE_PANTHEON_V2",
	}
	if err := c.execute(ctx, ArticlesQuery, vars, &data); err != nil {
		return nil, err
	}
	return toArticles(data.Articles), nil
}

func toArticles(ws []wireArticle) []content.Article {
	out := make([]content.Article, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toArticle())
	}
	return out
}
