package gcplog

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/logging"
	"cloud.google.com/go/logging/logadmin"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client reads log entries from Cloud Logging for one project. The
// service-account key is handed over in memory at construction and never
// touches the filesystem or the process environment; Close releases the
// underlying API connection and must be called on every exit path.
type Client struct {
	admin     *logadmin.Client
	projectID string
}

func New(ctx context.Context, projectID string, credentialsJSON []byte) (*Client, error) {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	admin, err := logadmin.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating logging client: %w", err)
	}
	return &Client{admin: admin, projectID: projectID}, nil
}

func (c *Client) Close() error {
	return c.admin.Close()
}

// Query runs a raw Cloud Logging filter and renders up to limit entries,
// oldest first, as an indented JSON array.
func (c *Client) Query(ctx context.Context, filter string, limit int) (string, error) {
	if limit <= 0 {
		limit = 50
	}
	it := c.admin.Entries(ctx, logadmin.Filter(filter))

	var entries []*logging.Entry
	for len(entries) < limit {
		entry, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("listing log entries: %w", err)
		}
		entries = append(entries, entry)
	}
	return renderEntries(entries), nil
}

// QueryRecentRequests lists the request logs of a Cloud Run service over
// the last hoursAgo hours.
func (c *Client) QueryRecentRequests(ctx context.Context, service string, hoursAgo, limit int) (string, error) {
	if hoursAgo <= 0 {
		hoursAgo = 24
	}
	filter := RequestLogFilter(c.projectID, service, hoursAgo, time.Now())
	return c.Query(ctx, filter, limit)
}
