package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"flowScope/internal/model"
)

const accountFlowsQuery = `query AccountFlows($account: String!, $token: String!) {
  accountTokenSnapshots(where: {account: $account, token: $token}, first: 1) {
    totalNetFlowRate
    balanceUntilUpdatedAt
    updatedAtTimestamp
    maybeCriticalAtTimestamp
  }
  poolMembers(where: {account: $account, pool_: {token: $token}}, first: 1000) {
    units
    isConnected
    pool {
      id
      flowRate
      adjustmentFlowRate
      totalUnits
    }
  }
}`

// Options configures the HTTP client and request rate.
type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client queries a Superfluid subgraph over GraphQL.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the given GraphQL endpoint.
func NewClient(endpoint string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, opts.Burst),
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// AccountFlows returns the account's token snapshot and pool memberships. The
// snapshot is nil when the indexer has never seen the account.
func (c *Client) AccountFlows(ctx context.Context, account, token string) (*model.AccountTokenSnapshot, []model.PoolMembership, error) {
	result, err := c.query(ctx, accountFlowsQuery, map[string]interface{}{
		"account": strings.ToLower(account),
		"token":   strings.ToLower(token),
	})
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := parseSnapshot(result.Get("data.accountTokenSnapshots.0"))
	if err != nil {
		return nil, nil, err
	}

	members := result.Get("data.poolMembers").Array()
	memberships := make([]model.PoolMembership, 0, len(members))
	for _, m := range members {
		memberships = append(memberships, model.PoolMembership{
			Units:       m.Get("units").String(),
			IsConnected: m.Get("isConnected").Bool(),
			Pool: model.MembershipPool{
				ID:                 m.Get("pool.id").String(),
				FlowRate:           m.Get("pool.flowRate").String(),
				AdjustmentFlowRate: m.Get("pool.adjustmentFlowRate").String(),
				TotalUnits:         m.Get("pool.totalUnits").String(),
			},
		})
	}

	return snapshot, memberships, nil
}

func parseSnapshot(value gjson.Result) (*model.AccountTokenSnapshot, error) {
	if !value.Exists() || value.Type == gjson.Null {
		return nil, nil
	}
	updatedAt := value.Get("updatedAtTimestamp")
	if !updatedAt.Exists() {
		return nil, fmt.Errorf("snapshot missing updatedAtTimestamp")
	}
	snapshot := &model.AccountTokenSnapshot{
		TotalNetFlowRate:      value.Get("totalNetFlowRate").String(),
		BalanceUntilUpdatedAt: value.Get("balanceUntilUpdatedAt").String(),
		UpdatedAtTimestamp:    updatedAt.Int(),
	}
	if critical := value.Get("maybeCriticalAtTimestamp"); critical.Exists() && critical.Type != gjson.Null {
		ts := critical.Int()
		snapshot.MaybeCriticalAtTimestamp = &ts
	}
	return snapshot, nil
}

func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}) (gjson.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, fmt.Errorf("rate limit: %w", err)
	}

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("subgraph status %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("subgraph returned invalid json")
	}

	result := gjson.ParseBytes(body)
	if errs := result.Get("errors").Array(); len(errs) > 0 {
		return gjson.Result{}, fmt.Errorf("subgraph error: %s", errs[0].Get("message").String())
	}
	return result, nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
