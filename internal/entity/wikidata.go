package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Defaults for the Wikidata client.
const (
	DefaultEndpoint = "https://www.wikidata.org/wiki/Special:EntityData"
	DefaultLanguage = "en"
	DefaultTimeout  = 10 * time.Second

	userAgent       = "go-ezsite/1.0 (+https://github.com/alnah/go-ezsite)"
	maxResponseSize = 8 << 20
)

// WikidataClient fetches entities from the Special:EntityData JSON endpoint.
type WikidataClient struct {
	httpClient *http.Client
	endpoint   string
	language   string
}

// ClientOption configures a WikidataClient.
type ClientOption func(*WikidataClient)

// WithEndpoint overrides the EntityData base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *WikidataClient) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithLanguage selects the label and description language.
func WithLanguage(lang string) ClientOption {
	return func(c *WikidataClient) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *WikidataClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *WikidataClient) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewWikidataClient creates a client for the public Wikidata endpoint.
func NewWikidataClient(opts ...ClientOption) *WikidataClient {
	c := &WikidataClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		endpoint:   DefaultEndpoint,
		language:   DefaultLanguage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entityData mirrors the parts of the EntityData response we read.
type entityData struct {
	Entities map[string]struct {
		ID           string                   `json:"id"`
		Labels       map[string]languageValue `json:"labels"`
		Descriptions map[string]languageValue `json:"descriptions"`
	} `json:"entities"`
}

type languageValue struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Resolve fetches qid. Labels and descriptions fall back to English when the
// configured language is missing.
func (c *WikidataClient) Resolve(ctx context.Context, qid string) (Entity, error) {
	if !IsQID(qid) {
		return Entity{}, fmt.Errorf("%w: %q", ErrInvalidQID, qid)
	}

	url := c.endpoint + "/" + qid + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: creating request: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Entity{}, fmt.Errorf("%w: %s: %v", ErrFetch, qid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Entity{}, fmt.Errorf("%w: %s", ErrNotFound, qid)
	}
	if resp.StatusCode >= 400 {
		return Entity{}, fmt.Errorf("%w: %s: %s", ErrFetch, qid, resp.Status)
	}

	var data entityData
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&data); err != nil {
		return Entity{}, fmt.Errorf("%w: %s: decoding response: %v", ErrFetch, qid, err)
	}

	// Redirected entities are keyed by their target id.
	for id, rec := range data.Entities {
		return Entity{
			ID:          id,
			Label:       pickLanguage(rec.Labels, c.language),
			Description: pickLanguage(rec.Descriptions, c.language),
		}, nil
	}
	return Entity{}, fmt.Errorf("%w: %s", ErrNotFound, qid)
}

func pickLanguage(values map[string]languageValue, lang string) string {
	if v, ok := values[lang]; ok {
		return v.Value
	}
	if v, ok := values[DefaultLanguage]; ok {
		return v.Value
	}
	return ""
}
