// Package deploy routes stack services to Proxmox nodes and drives the
// container lifecycle through a Host.
package deploy

import (
	"context"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/GothShoot/proxmox-swarm/internal/stack"
	"go.uber.org/zap"
)

// Host is the container host API the deployer calls into.
type Host interface {
	ListNodes(ctx context.Context) ([]model.Node, error)
	CreateContainer(ctx context.Context, node string, params model.Params) (string, error)
	StartContainer(ctx context.Context, node string, vmid int) error
	StopContainer(ctx context.Context, node string, vmid int) error
	CreateVNet(ctx context.Context, name, zone string, tag *int) error
}

// Options controls a deploy.
type Options struct {
	// DefaultNode receives services that do not name a node.
	DefaultNode string
	// Network is an SDN vnet services are bridged onto unless they set
	// net0 or bridge themselves.
	Network string
	Zone    string
	// VLANTag is applied when the vnet is created.
	VLANTag *int
	// CreateNetwork creates Network before any container.
	CreateNetwork bool
}

// Step is one container creation resolved to its node.
type Step struct {
	Service string
	Node    string
	Params  model.Params
}

// Result records what happened to one step.
type Result struct {
	Service string
	Node    string
	UPID    string
	Err     error
}

// Deployer drives a Host. It calls the host sequentially and never retries.
type Deployer struct {
	Host Host
	Log  *zap.Logger
}

// New creates a Deployer. A nil logger discards output.
func New(host Host, log *zap.Logger) *Deployer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deployer{Host: host, Log: log}
}

// Plan resolves every service to a node. If any service cannot be routed
// the whole plan fails with *MissingTargetError.
func Plan(services []stack.Service, opts Options) ([]Step, error) {
	var missing []string
	steps := make([]Step, 0, len(services))

	for _, svc := range services {
		node := svc.Node()
		if node == "" {
			node = opts.DefaultNode
		}
		if node == "" {
			missing = append(missing, svc.Name)
			continue
		}
		steps = append(steps, Step{
			Service: svc.Name,
			Node:    node,
			Params:  svc.OnBridge(opts.Network).Params(),
		})
	}

	if len(missing) > 0 {
		return nil, &MissingTargetError{Services: missing}
	}
	return steps, nil
}

// Deploy plans services and applies the plan.
func (d *Deployer) Deploy(ctx context.Context, services []stack.Service, opts Options) ([]Result, error) {
	steps, err := Plan(services, opts)
	if err != nil {
		return nil, err
	}
	return d.Apply(ctx, steps, opts)
}

// Apply creates the SDN vnet when asked, then one container per step,
// stopping at the first failure. Results cover every step attempted.
func (d *Deployer) Apply(ctx context.Context, steps []Step, opts Options) ([]Result, error) {
	if opts.Network != "" && opts.CreateNetwork {
		if opts.Zone == "" {
			return nil, ErrNoZone
		}
		d.Log.Info("creating SDN network", zap.String("vnet", opts.Network), zap.String("zone", opts.Zone))
		if err := d.Host.CreateVNet(ctx, opts.Network, opts.Zone, opts.VLANTag); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		log := d.Log.With(zap.String("service", step.Service), zap.String("node", step.Node))
		log.Info("creating container")

		upid, err := d.Host.CreateContainer(ctx, step.Node, step.Params)
		if err != nil {
			serr := &ServiceError{Service: step.Service, Node: step.Node, Err: err}
			results = append(results, Result{Service: step.Service, Node: step.Node, Err: serr})
			return results, serr
		}

		log.Debug("container task queued", zap.String("upid", upid))
		results = append(results, Result{Service: step.Service, Node: step.Node, UPID: upid})
	}

	return results, nil
}

// Start starts container vmid on node.
func (d *Deployer) Start(ctx context.Context, node string, vmid int) error {
	d.Log.Info("starting container", zap.String("node", node), zap.Int("vmid", vmid))
	return d.Host.StartContainer(ctx, node, vmid)
}

// Stop stops container vmid on node.
func (d *Deployer) Stop(ctx context.Context, node string, vmid int) error {
	d.Log.Info("stopping container", zap.String("node", node), zap.Int("vmid", vmid))
	return d.Host.StopContainer(ctx, node, vmid)
}

// Nodes lists the host's nodes.
func (d *Deployer) Nodes(ctx context.Context) ([]model.Node, error) {
	return d.Host.ListNodes(ctx)
}
