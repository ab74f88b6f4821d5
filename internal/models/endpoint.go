package models

import (
	"fmt"
	"time"
)

// Endpoint describes the object-storage service account the workbench manages.
type Endpoint struct {
	Name     string        `json:"name" yaml:"name"`
	Scheme   string        `json:"scheme" yaml:"scheme"` // "http" or "https"
	Host     string        `json:"host" yaml:"host"`
	Port     int           `json:"port" yaml:"port"`
	Token    string        `json:"token" yaml:"token"`
	Insecure bool          `json:"insecure" yaml:"insecure"` // skip TLS verification
	CACert   string        `json:"ca_cert,omitempty" yaml:"ca_cert"`
	Timeout  time.Duration `json:"timeout,omitempty" yaml:"timeout"`

	// RateLimit caps requests per second; zero means unlimited.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit"`
}

// ApplyDefaults fills in scheme, port and timeout when unset.
func (e *Endpoint) ApplyDefaults() {
	if e.Scheme == "" {
		e.Scheme = "https"
	}
	if e.Port == 0 {
		if e.Scheme == "https" {
			e.Port = 443
		} else {
			e.Port = 80
		}
	}
	if e.Timeout == 0 {
		e.Timeout = 30 * time.Second
	}
}

// BaseURL returns the full base URL for this endpoint.
func (e *Endpoint) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", e.Scheme, e.Host, e.Port)
}

// MaskedToken returns a fixed mask when a token is set, for display.
func (e *Endpoint) MaskedToken() string {
	if e.Token == "" {
		return ""
	}
	return "••••••••"
}
