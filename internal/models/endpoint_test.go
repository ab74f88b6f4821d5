package models

import (
	"testing"
	"time"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name   string
		ep     Endpoint
		expect string
	}{
		{"https default", Endpoint{Scheme: "https", Host: "storage.example.com", Port: 443}, "https://storage.example.com:443"},
		{"http custom port", Endpoint{Scheme: "http", Host: "minio.lab.local", Port: 9000}, "http://minio.lab.local:9000"},
		{"localhost", Endpoint{Scheme: "http", Host: "localhost", Port: 80}, "http://localhost:80"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.ep.BaseURL()
			if got != tc.expect {
				t.Errorf("BaseURL() = %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		name       string
		ep         Endpoint
		wantScheme string
		wantPort   int
	}{
		{"empty", Endpoint{Host: "h"}, "https", 443},
		{"http", Endpoint{Host: "h", Scheme: "http"}, "http", 80},
		{"explicit port", Endpoint{Host: "h", Scheme: "http", Port: 8080}, "http", 8080},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.ep.ApplyDefaults()
			if tc.ep.Scheme != tc.wantScheme || tc.ep.Port != tc.wantPort {
				t.Errorf("ApplyDefaults() = (%q, %d), want (%q, %d)", tc.ep.Scheme, tc.ep.Port, tc.wantScheme, tc.wantPort)
			}
			if tc.ep.Timeout != 30*time.Second {
				t.Errorf("Timeout = %v, want 30s", tc.ep.Timeout)
			}
		})
	}
}

func TestMaskedToken(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		expect string
	}{
		{"non-empty", "secret123", "••••••••"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := &Endpoint{Token: tc.token}
			if got := e.MaskedToken(); got != tc.expect {
				t.Errorf("MaskedToken() = %q, want %q", got, tc.expect)
			}
		})
	}
}
