package timetracking

import (
	"context"
	"sync"

	"github.com/temirov/gitlog/internal/reportwindow"
)

// Lookup resolves tracked time for a project.
type Lookup interface {
	TrackedTime(executionContext context.Context, project string, window reportwindow.Window) (string, error)
}

// ClientFactory builds the client behind a LazyLookup.
type ClientFactory func() (*Client, error)

// LazyLookup constructs its client on first use and shares it across goroutines.
type LazyLookup struct {
	client func() (*Client, error)
}

// NewLazyLookup wraps the factory so it runs at most once.
func NewLazyLookup(factory ClientFactory) *LazyLookup {
	return &LazyLookup{client: sync.OnceValues(factory)}
}

// TrackedTime builds the client if needed and delegates the lookup.
func (lookup *LazyLookup) TrackedTime(executionContext context.Context, project string, window reportwindow.Window) (string, error) {
	client, constructionError := lookup.client()
	if constructionError != nil {
		return "", constructionError
	}
	return client.TrackedTime(executionContext, project, window)
}
