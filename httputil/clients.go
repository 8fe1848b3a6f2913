package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	Provider *http.Client // stats provider API
	Archive  *http.Client // S3-compatible archive endpoint
}

// NewClients builds the long-lived HTTP clients the process reuses for its
// whole lifetime. Components receive these at construction; nothing dials on
// its own.
func NewClients() *Clients {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 4

	return &Clients{
		Provider: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Archive: &http.Client{Timeout: 60 * time.Second},
	}
}
