package config

import "fmt"

// DefaultAPIAddress is the address the HTTP API listens on by default.
var DefaultAPIAddress = ":6070"

// API holds configuration for the HTTP API.
type API struct {
	Enabled bool
	// Address is the host:port the API listens on.
	Address string
	// ReadOnly disables every mutating endpoint (ingest, delete, access
	// rule/policy writes) regardless of per-collection settings.
	ReadOnly bool
	// URLRoot is the base url this server is reachable at. No handler reads
	// it; responses are built without it.
	URLRoot string
	// AcceptsWrites, when false, rejects every mutating request (any method
	// but GET and OPTIONS) independently of ReadOnly; queries are still
	// served.
	AcceptsWrites bool
	// IsSecondary marks this instance as a replication follower. A
	// secondary always rejects direct mutating requests, independent of
	// AcceptsWrites; it only advances by pulling the /changes feed from
	// its primary.
	IsSecondary bool
}

// DefaultAPI returns the default API configuration.
func DefaultAPI() *API {
	return &API{
		Enabled:       true,
		Address:       DefaultAPIAddress,
		AcceptsWrites: true,
	}
}

// Validate returns an error if the API configuration is invalid.
func (cfg *API) Validate() error {
	if cfg.Enabled && cfg.Address == "" {
		return fmt.Errorf("api.address is required when api is enabled")
	}
	return nil
}

// Copy returns a deep copy of the API struct.
func (cfg *API) Copy() *API {
	res := *cfg
	return &res
}
