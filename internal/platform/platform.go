package platform

import (
	"context"

	"github.com/rflorenc/distribution-workbench/internal/models"
)

// RemoteClient is the storage service as seen by the workbench: the
// distribution collection and per-object metadata. Every method may block on
// the network and must not be called from the UI loop.
type RemoteClient interface {
	// Ping checks that the service is reachable and the credentials work.
	Ping(ctx context.Context) error

	// List returns every distribution in service order.
	List(ctx context.Context) ([]*models.Distribution, error)

	// Create creates a distribution for the origin bucket.
	Create(ctx context.Context, originBucket string, aliases []string, enabled bool) (*models.Distribution, error)

	// Update replaces the aliases and enabled flag of a distribution.
	Update(ctx context.Context, id string, aliases []string, enabled bool) (*models.Distribution, error)

	// Delete removes a distribution. The service refuses while the
	// distribution is enabled or still deploying.
	Delete(ctx context.Context, id string) error

	// GetMetadata returns the user metadata of an object.
	GetMetadata(ctx context.Context, key string) (map[string]string, error)

	// SetMetadata applies upserts and removals to an object's metadata.
	SetMetadata(ctx context.Context, key string, upserts map[string]string, removals []string) error
}
