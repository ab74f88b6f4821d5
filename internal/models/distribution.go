package models

import "time"

// Distribution is one content-distribution configuration mirrored from the
// remote service. ID is the identity; the remaining fields are refreshed
// wholesale on every fetch.
type Distribution struct {
	ID           string    `json:"id"`
	OriginBucket string    `json:"origin_bucket"`
	DomainName   string    `json:"domain_name"`
	Enabled      bool      `json:"enabled"`
	Deployed     bool      `json:"deployed"`
	Aliases      []string  `json:"aliases"`
	Status       string    `json:"status,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// Clone returns a deep copy.
func (d *Distribution) Clone() *Distribution {
	if d == nil {
		return nil
	}
	c := *d
	if d.Aliases != nil {
		c.Aliases = make([]string, len(d.Aliases))
		copy(c.Aliases, d.Aliases)
	}
	return &c
}

// Deletable reports whether the remote service will accept a delete:
// the distribution must be deployed and disabled.
func (d *Distribution) Deletable() bool {
	return d != nil && d.Deployed && !d.Enabled
}
