// Package consul provides service registration and discovery on HashiCorp
// Consul. Every service registers itself with a health check on startup;
// the gateway resolves downstream instances through the same client.
package consul

import (
	consulapi "github.com/hashicorp/consul/api"
)

// Client wraps the Consul API client
type Client struct {
	api *consulapi.Client
}

// NewClient creates a Consul client, optionally authenticated with an ACL token
func NewClient(addr, token string) (*Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	if token != "" {
		cfg.Token = token
	}

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{api: client}, nil
}

// API returns the underlying Consul API client
func (c *Client) API() *consulapi.Client {
	return c.api
}
