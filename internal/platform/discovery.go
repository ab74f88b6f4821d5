package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rflorenc/distribution-workbench/internal/logging"
)

// MinMetadataVersion is the first service version that accepts metadata
// patches with removals.
const MinMetadataVersion = "1.2"

// ServiceInfo holds the parsed /api/ root response, e.g.
// {"version": "1.4.2", "current_version": "/api/v1/"}.
type ServiceInfo struct {
	Version        string `json:"version"`
	CurrentVersion string `json:"current_version"`
}

// ParseServiceInfo parses the /api/ response body.
func ParseServiceInfo(body []byte) (*ServiceInfo, error) {
	var info ServiceInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parsing API root response: %w", err)
	}
	return &info, nil
}

// DetectAPIPrefix returns the API prefix advertised by the service, always
// with a trailing slash, or "" when none is advertised.
func DetectAPIPrefix(info *ServiceInfo) string {
	if info == nil || info.CurrentVersion == "" {
		return ""
	}
	prefix := info.CurrentVersion
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// CompareVersions compares two service versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
// Partial versions such as "1.4" are accepted; unparseable ones compare equal.
func CompareVersions(a, b string) int {
	av, err := semver.NewVersion(a)
	if err != nil {
		return 0
	}
	bv, err := semver.NewVersion(b)
	if err != nil {
		return 0
	}
	return av.Compare(bv)
}

// VersionAtLeast returns true if version >= min. Unknown versions pass.
func VersionAtLeast(version, min string) bool {
	if version == "" || min == "" {
		return true
	}
	return CompareVersions(version, min) >= 0
}

// Discover reads the service root, switches h to the advertised API prefix
// and returns what it found. Discovery is best-effort: a failure is logged
// and h keeps its current prefix.
func Discover(ctx context.Context, h *HTTPClient) *ServiceInfo {
	body, err := h.client.Get(ctx, "/api/", nil)
	if err != nil {
		logging.Warn("Discovery", "/api/ failed: %v", err)
		return nil
	}
	info, err := ParseServiceInfo(body)
	if err != nil {
		logging.Warn("Discovery", "%v", err)
		return nil
	}
	if prefix := DetectAPIPrefix(info); prefix != "" {
		h.SetAPIPrefix(prefix)
		logging.Info("Discovery", "detected API prefix %s (service %s)", prefix, info.Version)
	}
	if !VersionAtLeast(info.Version, MinMetadataVersion) {
		logging.Warn("Discovery", "service %s predates %s; metadata removals may be ignored", info.Version, MinMetadataVersion)
	}
	return info
}
