package mangaplus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// titleDetailPath is the title detail endpoint of the web API.
const titleDetailPath = "/api/title_detail"

// Fetched is one title detail response: the verbatim body, which is
// what gets cached, and its decoded snapshot.
type Fetched struct {
	Raw      []byte
	Snapshot *model.Snapshot
}

// Client is a thin HTTP client for the MANGA Plus web API.
// It performs exactly one request per call; failures are not retried.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

// NewClient creates a new MANGA Plus client. The secret is an optional
// device secret sent as a query parameter; pass "" to omit it. A zero
// timeout leaves the transport's default in place.
func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchTitle retrieves the current chapter-list snapshot for a title.
// An error result in the response is returned as *APIError.
func (c *Client) FetchTitle(ctx context.Context, titleID int) (*Fetched, error) {
	q := url.Values{}
	q.Set("title_id", strconv.Itoa(titleID))
	if c.secret != "" {
		q.Set("secret", c.secret)
	}
	u := c.baseURL + titleDetailPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/x-protobuf, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request GET %s: %w", titleDetailPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	snap, decodeErr := Decode(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr *APIError
		if errors.As(decodeErr, &apiErr) {
			return nil, apiErr
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: c.baseURL + titleDetailPath}
	}

	if decodeErr != nil {
		return nil, decodeErr
	}

	return &Fetched{Raw: raw, Snapshot: snap}, nil
}
