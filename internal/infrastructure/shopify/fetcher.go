package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrCostLimitExhausted means the API rejected the minimum page size on cost
// grounds. The cost ceiling is a hard limit, not a transient fault; the run
// terminates instead of retrying forever.
var ErrCostLimitExhausted = errors.New("shopify: cost limit exceeded at minimum page size")

// Resource describes one paginated Admin API connection
type Resource struct {
	// Name is the connection field in the response data, e.g. "products"
	Name string
	// Query is the GraphQL document taking $first, $after and optional $query
	Query string
}

// Page is one fetched page handed to the caller
type Page struct {
	Nodes []json.RawMessage
	// Cursor is the end cursor after this page; persist it before continuing
	Cursor   string
	HasNext  bool
	PageSize int
}

// FetcherConfig holds adaptive pagination settings
type FetcherConfig struct {
	InitialPageSize int
	MinPageSize     int
	// CostBackoff is the fixed wait before retrying a cost-rejected cursor
	CostBackoff time.Duration
	// PageDelay is an optional pause between accepted pages
	PageDelay time.Duration
	// OnPageSizeHalved, when set, is invoked after every cost-driven
	// page size reduction
	OnPageSizeHalved func(ctx context.Context, resource string, newSize int)
}

// DefaultFetcherConfig returns production pagination settings
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		InitialPageSize: 250,
		MinPageSize:     25,
		CostBackoff:     2 * time.Second,
	}
}

// Fetcher walks cursor-based pagination with cost-adaptive page sizing. On a
// cost rejection it halves the page size (floored at the minimum) and retries
// the same cursor after a fixed backoff. Shrinkage is sticky: the size never
// grows back within a run, trading throughput for safety margin.
type Fetcher struct {
	client *Client
	config FetcherConfig
}

// NewFetcher creates a new Fetcher
func NewFetcher(client *Client, cfg FetcherConfig) *Fetcher {
	if cfg.InitialPageSize <= 0 {
		cfg.InitialPageSize = DefaultFetcherConfig().InitialPageSize
	}
	if cfg.MinPageSize <= 0 {
		cfg.MinPageSize = DefaultFetcherConfig().MinPageSize
	}
	if cfg.MinPageSize > cfg.InitialPageSize {
		cfg.MinPageSize = cfg.InitialPageSize
	}
	if cfg.CostBackoff <= 0 {
		cfg.CostBackoff = DefaultFetcherConfig().CostBackoff
	}
	return &Fetcher{client: client, config: cfg}
}

// FetchAll walks every page of the resource starting at startCursor (empty
// means the beginning) and invokes handle for each page in cursor order.
// filter is an optional platform search filter (e.g. "updated_at:>=..."),
// passed through as the $query variable.
func (f *Fetcher) FetchAll(ctx context.Context, creds Credentials, res Resource, filter, startCursor string, handle func(Page) error) error {
	pageSize := f.config.InitialPageSize
	cursor := startCursor

	for {
		vars := map[string]any{"first": pageSize}
		if cursor != "" {
			vars["after"] = cursor
		}
		if filter != "" {
			vars["query"] = filter
		}

		data, _, err := f.client.Query(ctx, creds, res.Query, vars)
		if errors.Is(err, ErrCostExceeded) {
			if pageSize <= f.config.MinPageSize {
				return fmt.Errorf("%w: resource %s, cursor %q", ErrCostLimitExhausted, res.Name, cursor)
			}
			pageSize = pageSize / 2
			if pageSize < f.config.MinPageSize {
				pageSize = f.config.MinPageSize
			}
			if f.config.OnPageSizeHalved != nil {
				f.config.OnPageSizeHalved(ctx, res.Name, pageSize)
			}
			if err := sleepCtx(ctx, f.config.CostBackoff); err != nil {
				return err
			}
			continue // retry the same cursor at the smaller size
		}
		if err != nil {
			return err
		}

		var payload map[string]Connection
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("shopify: failed to decode %s page: %w", res.Name, err)
		}
		conn, ok := payload[res.Name]
		if !ok {
			return fmt.Errorf("shopify: response missing %s connection", res.Name)
		}

		if err := handle(Page{
			Nodes:    conn.Nodes,
			Cursor:   conn.PageInfo.EndCursor,
			HasNext:  conn.PageInfo.HasNextPage,
			PageSize: pageSize,
		}); err != nil {
			return err
		}

		if !conn.PageInfo.HasNextPage {
			return nil
		}
		cursor = conn.PageInfo.EndCursor

		if f.config.PageDelay > 0 {
			if err := sleepCtx(ctx, f.config.PageDelay); err != nil {
				return err
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
