package clickupsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// taskAPI is the upstream dependency of both sync paths: the webhook ingress
// re-fetches the full task (payloads are deltas, not authoritative) and the
// batch importer pulls list pages.
type taskAPI interface {
	GetTask(ctx context.Context, taskID string) (*clickupTask, error)
	GetListTasks(ctx context.Context, listID string, page int, limit int, includeClosed bool) ([]clickupTask, error)
}

type clickupClient struct {
	baseURL string
	token   string
	http    *http.Client
	limiter <-chan time.Time
}

func newClickupClient(token string) (*clickupClient, error) {
	baseURL := strings.TrimSpace(os.Getenv("CLICKUP_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.clickup.com/api/v2"
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("clickup api token is empty")
	}
	rateLimitPerMin := int64(90)
	if v := strings.TrimSpace(os.Getenv("CLICKUP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &clickupClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: time.Tick(interval),
	}, nil
}

func (c *clickupClient) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	<-c.limiter
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("clickup api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, dest)
}

func (c *clickupClient) GetTask(ctx context.Context, taskID string) (*clickupTask, error) {
	var task clickupTask
	if err := c.get(ctx, "/task/"+url.PathEscape(taskID), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

type clickupTaskPage struct {
	Tasks []clickupTask `json:"tasks"`
}

func (c *clickupClient) GetListTasks(ctx context.Context, listID string, page int, limit int, includeClosed bool) ([]clickupTask, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if includeClosed {
		params.Set("include_closed", "true")
	}

	var parsed clickupTaskPage
	if err := c.get(ctx, "/list/"+url.PathEscape(listID)+"/task", params, &parsed); err != nil {
		return nil, err
	}
	return parsed.Tasks, nil
}
