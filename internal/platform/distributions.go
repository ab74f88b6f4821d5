package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/models"
)

const defaultAPIPrefix = "/api/v1/"

// statusDeployed is the service status of a distribution whose last change
// has finished propagating.
const statusDeployed = "Deployed"

// HTTPClient implements RemoteClient against the service's REST API.
type HTTPClient struct {
	client *Client
	prefix string
}

// NewHTTPClient creates a RemoteClient for the endpoint.
func NewHTTPClient(ep *models.Endpoint) *HTTPClient {
	return &HTTPClient{client: NewClient(ep), prefix: defaultAPIPrefix}
}

// SetAPIPrefix overrides the API prefix, e.g. after discovery.
func (h *HTTPClient) SetAPIPrefix(prefix string) {
	if prefix == "" {
		return
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	h.prefix = prefix
}

// APIPrefix returns the prefix requests are sent to.
func (h *HTTPClient) APIPrefix() string {
	return h.prefix
}

// Raw returns the underlying HTTP client.
func (h *HTTPClient) Raw() *Client {
	return h.client
}

type distributionWire struct {
	ID           string    `json:"id"`
	OriginBucket string    `json:"origin_bucket"`
	DomainName   string    `json:"domain_name"`
	Enabled      bool      `json:"enabled"`
	Status       string    `json:"status"`
	Aliases      []string  `json:"aliases"`
	LastModified time.Time `json:"last_modified"`
}

func (w distributionWire) toModel() *models.Distribution {
	aliases := w.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	return &models.Distribution{
		ID:           w.ID,
		OriginBucket: w.OriginBucket,
		DomainName:   w.DomainName,
		Enabled:      w.Enabled,
		Deployed:     strings.EqualFold(w.Status, statusDeployed),
		Aliases:      aliases,
		Status:       w.Status,
		LastModified: w.LastModified,
	}
}

type distributionRequest struct {
	OriginBucket string   `json:"origin_bucket,omitempty"`
	Aliases      []string `json:"aliases"`
	Enabled      bool     `json:"enabled"`
}

type metadataWire struct {
	Metadata map[string]string `json:"metadata"`
}

type metadataPatch struct {
	Set    map[string]string `json:"set"`
	Remove []string          `json:"remove"`
}

func (h *HTTPClient) distributionsPath() string {
	return h.prefix + "distributions/"
}

func (h *HTTPClient) distributionPath(id string) string {
	return h.distributionsPath() + url.PathEscape(id) + "/"
}

func (h *HTTPClient) metadataPath(key string) string {
	return h.prefix + "objects/" + url.PathEscape(key) + "/metadata/"
}

func (h *HTTPClient) Ping(ctx context.Context) error {
	if _, err := h.client.Get(ctx, h.prefix+"ping/", nil); err != nil {
		return faults.Remote("ping service", err)
	}
	return nil
}

func (h *HTTPClient) List(ctx context.Context) ([]*models.Distribution, error) {
	raw, err := h.client.GetAll(ctx, h.distributionsPath())
	if err != nil {
		return nil, faults.Remote("list distributions", err)
	}
	out := make([]*models.Distribution, 0, len(raw))
	for _, r := range raw {
		var w distributionWire
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, faults.Remote("list distributions", fmt.Errorf("parsing distribution: %w", err))
		}
		out = append(out, w.toModel())
	}
	return out, nil
}

func (h *HTTPClient) Create(ctx context.Context, originBucket string, aliases []string, enabled bool) (*models.Distribution, error) {
	body, _, err := h.client.Post(ctx, h.distributionsPath(), distributionRequest{
		OriginBucket: originBucket,
		Aliases:      nonNil(aliases),
		Enabled:      enabled,
	})
	if err != nil {
		return nil, classify("create distribution for "+originBucket, err)
	}
	return decodeDistribution("create distribution for "+originBucket, body)
}

func (h *HTTPClient) Update(ctx context.Context, id string, aliases []string, enabled bool) (*models.Distribution, error) {
	body, _, err := h.client.Patch(ctx, h.distributionPath(id), distributionRequest{
		Aliases: nonNil(aliases),
		Enabled: enabled,
	})
	if err != nil {
		return nil, classify("update distribution "+id, err)
	}
	return decodeDistribution("update distribution "+id, body)
}

func (h *HTTPClient) Delete(ctx context.Context, id string) error {
	if err := h.client.Delete(ctx, h.distributionPath(id)); err != nil {
		return classify("delete distribution "+id, err)
	}
	return nil
}

func (h *HTTPClient) GetMetadata(ctx context.Context, key string) (map[string]string, error) {
	var w metadataWire
	if err := h.client.GetJSON(ctx, h.metadataPath(key), nil, &w); err != nil {
		return nil, classify("read metadata of "+key, err)
	}
	if w.Metadata == nil {
		w.Metadata = map[string]string{}
	}
	return w.Metadata, nil
}

func (h *HTTPClient) SetMetadata(ctx context.Context, key string, upserts map[string]string, removals []string) error {
	if upserts == nil {
		upserts = map[string]string{}
	}
	_, _, err := h.client.Patch(ctx, h.metadataPath(key), metadataPatch{Set: upserts, Remove: nonNil(removals)})
	if err != nil {
		return classify("write metadata of "+key, err)
	}
	return nil
}

func decodeDistribution(op string, body []byte) (*models.Distribution, error) {
	var w distributionWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, faults.Remote(op, fmt.Errorf("parsing response: %w", err))
	}
	return w.toModel(), nil
}

// classify maps service refusals onto the error taxonomy. Conflicts and
// failed preconditions mean the distribution is in the wrong state for the
// request; 404 means it no longer exists; everything else is a remote
// failure.
func classify(op string, err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusConflict, http.StatusPreconditionFailed:
			return faults.New(faults.PreconditionError, op, err)
		case http.StatusNotFound:
			return faults.New(faults.NotFoundError, op, err)
		}
	}
	return faults.Remote(op, err)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
