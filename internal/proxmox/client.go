// Package proxmox is a small client for the Proxmox VE REST API covering the
// LXC lifecycle and SDN calls the deployer needs.
package proxmox

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GothShoot/proxmox-swarm/internal/model"
)

const (
	defaultPort    = "8006"
	apiPrefix      = "/api2/json"
	defaultTimeout = 30 * time.Second
)

// Client talks to one Proxmox VE endpoint using an API token.
type Client struct {
	BaseURL  string
	TokenID  string
	Token    string
	Insecure bool

	http *http.Client
}

// New creates a client for host, which may be a bare hostname
// ("pve.local"), host:port, or a full URL.
func New(host, tokenID, token string, insecure bool) *Client {
	c := &Client{
		BaseURL:  BaseURL(host),
		TokenID:  tokenID,
		Token:    token,
		Insecure: insecure,
	}
	c.http = c.httpClient()
	return c
}

// BaseURL normalizes a configured host into an https URL with the default
// API port.
func BaseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil || u.Host == "" {
		return host
	}
	if u.Port() == "" {
		u.Host = u.Host + ":" + defaultPort
	}
	u.Path = strings.TrimSuffix(u.Path, apiPrefix)
	return strings.TrimRight(u.String(), "/")
}

// ListNodes returns the cluster members.
func (c *Client) ListNodes(ctx context.Context) ([]model.Node, error) {
	var nodes []model.Node
	if err := c.do(ctx, http.MethodGet, "/nodes", nil, &nodes); err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	return nodes, nil
}

// CreateContainer creates an LXC container on node and returns the task UPID.
func (c *Client) CreateContainer(ctx context.Context, node string, params model.Params) (string, error) {
	var upid string
	path := "/nodes/" + url.PathEscape(node) + "/lxc"
	if err := c.do(ctx, http.MethodPost, path, params.Form(), &upid); err != nil {
		return "", fmt.Errorf("creating container on %s: %w", node, err)
	}
	return upid, nil
}

// StartContainer starts container vmid on node.
func (c *Client) StartContainer(ctx context.Context, node string, vmid int) error {
	if err := c.status(ctx, node, vmid, "start"); err != nil {
		return fmt.Errorf("starting container %d on %s: %w", vmid, node, err)
	}
	return nil
}

// StopContainer stops container vmid on node.
func (c *Client) StopContainer(ctx context.Context, node string, vmid int) error {
	if err := c.status(ctx, node, vmid, "stop"); err != nil {
		return fmt.Errorf("stopping container %d on %s: %w", vmid, node, err)
	}
	return nil
}

// CreateVNet creates an SDN virtual network in zone, optionally tagged.
func (c *Client) CreateVNet(ctx context.Context, name, zone string, tag *int) error {
	form := url.Values{}
	form.Set("vnet", name)
	form.Set("zone", zone)
	if tag != nil {
		form.Set("tag", strconv.Itoa(*tag))
	}
	if err := c.do(ctx, http.MethodPost, "/cluster/sdn/vnets", form, nil); err != nil {
		return fmt.Errorf("creating vnet %s: %w", name, err)
	}
	// Pending SDN changes only take effect once applied.
	if err := c.do(ctx, http.MethodPut, "/cluster/sdn", url.Values{}, nil); err != nil {
		return fmt.Errorf("applying SDN config: %w", err)
	}
	return nil
}

func (c *Client) status(ctx context.Context, node string, vmid int, action string) error {
	path := fmt.Sprintf("/nodes/%s/lxc/%d/status/%s", url.PathEscape(node), vmid, action)
	return c.do(ctx, http.MethodPost, path, url.Values{}, nil)
}

func (c *Client) httpClient() *http.Client {
	client := &http.Client{Timeout: defaultTimeout}
	if c.Insecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // user-configured
		}
	}
	return client
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	if c.http == nil {
		c.http = c.httpClient()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+apiPrefix+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("PVEAPIToken=%s=%s", c.TokenID, c.Token))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Reason: resp.Status, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
