package config

import (
	"strings"
	"time"
)

// PlatformConfig points the dashboard at the remote HAL/REST platform API.
type PlatformConfig struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api".
	BaseURL string `env:"API_URL" envDefault:"http://localhost:8081/api"`

	// Timeout bounds any platform request that does not carry its own deadline.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// UserAgent is sent on every request.
	UserAgent string `env:"USER_AGENT" envDefault:"vv-dashboard"`

	// PageSize is the default page size for list requests.
	PageSize int `env:"PAGE_SIZE" envDefault:"20"`
}

// Sanitize trims the base URL and clamps values.
func (p *PlatformConfig) Sanitize() {
	p.BaseURL = strings.TrimRight(strings.TrimSpace(p.BaseURL), "/")
	if p.Timeout <= 0 {
		p.Timeout = 15 * time.Second
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}
