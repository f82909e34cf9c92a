package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/GothShoot/proxmox-swarm/internal/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type created struct {
	node   string
	params model.Params
}

// fakeHost records calls instead of talking to Proxmox.
type fakeHost struct {
	created []created
	started []int
	stopped []int
	vnets   []string
	failOn  string
	nodes   []model.Node
}

func (f *fakeHost) ListNodes(ctx context.Context) ([]model.Node, error) {
	return f.nodes, nil
}

func (f *fakeHost) CreateContainer(ctx context.Context, node string, params model.Params) (string, error) {
	host, _ := params.Get("hostname")
	if host == f.failOn {
		return "", errors.New("vmid already in use")
	}
	f.created = append(f.created, created{node: node, params: params})
	return "UPID:" + node + ":" + model.Stringify(host), nil
}

func (f *fakeHost) StartContainer(ctx context.Context, node string, vmid int) error {
	f.started = append(f.started, vmid)
	return nil
}

func (f *fakeHost) StopContainer(ctx context.Context, node string, vmid int) error {
	f.stopped = append(f.stopped, vmid)
	return nil
}

func (f *fakeHost) CreateVNet(ctx context.Context, name, zone string, tag *int) error {
	f.vnets = append(f.vnets, zone+"/"+name)
	return nil
}

func services() []stack.Service {
	return []stack.Service{
		{Name: "web", Config: model.Fields{"vmid": 100, "node": "pve1"}},
		{Name: "db", Config: model.Fields{"vmid": 101}},
	}
}

func TestPlanDefaultNode(t *testing.T) {
	steps, err := Plan(services(), Options{DefaultNode: "pve2"})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "pve1", steps[0].Node)
	assert.Equal(t, "pve2", steps[1].Node)
	assert.False(t, steps[0].Params.Has("node"))
}

func TestPlanMissingTarget(t *testing.T) {
	_, err := Plan(services(), Options{})
	require.Error(t, err)

	var missing *MissingTargetError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"db"}, missing.Services)
	assert.True(t, errors.Is(err, ErrMissingTarget))
}

func TestDeployMissingTargetCreatesNothing(t *testing.T) {
	host := &fakeHost{}
	_, err := New(host, nil).Deploy(context.Background(), services(), Options{})
	require.Error(t, err)
	assert.Empty(t, host.created)
}

func TestDeploy(t *testing.T) {
	host := &fakeHost{}
	results, err := New(host, nil).Deploy(context.Background(), services(), Options{DefaultNode: "pve2"})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "UPID:pve1:web", results[0].UPID)
	assert.Equal(t, "pve2", results[1].Node)

	require.Len(t, host.created, 2)
	assert.Equal(t, "pve1", host.created[0].node)
	vmid, _ := host.created[1].params.Get("vmid")
	assert.Equal(t, 101, vmid)
}

func TestDeployDuplicateVMIDsPassThrough(t *testing.T) {
	host := &fakeHost{}
	svcs := []stack.Service{
		{Name: "a", Config: model.Fields{"vmid": 100}},
		{Name: "b", Config: model.Fields{"vmid": 100}},
	}

	_, err := New(host, nil).Deploy(context.Background(), svcs, Options{DefaultNode: "pve1"})
	require.NoError(t, err)
	assert.Len(t, host.created, 2)
}

func TestDeployStopsAtFirstFailure(t *testing.T) {
	host := &fakeHost{failOn: "web"}
	results, err := New(host, nil).Deploy(context.Background(), services(), Options{DefaultNode: "pve2"})
	require.Error(t, err)

	var serr *ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "web", serr.Service)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Empty(t, host.created)
}

func TestDeployNetwork(t *testing.T) {
	host := &fakeHost{}
	svcs := []stack.Service{
		{Name: "web", Config: model.Fields{"ip": "dhcp"}},
		{Name: "db", Config: model.Fields{"bridge": "vmbr1"}},
	}

	_, err := New(host, nil).Deploy(context.Background(), svcs, Options{
		DefaultNode:   "pve1",
		Network:       "swarm",
		Zone:          "lab",
		CreateNetwork: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"lab/swarm"}, host.vnets)
	net0, _ := host.created[0].params.Get("net0")
	assert.Equal(t, "name=eth0,bridge=swarm,ip=dhcp", net0)
	net0, _ = host.created[1].params.Get("net0")
	assert.Equal(t, "name=eth0,bridge=vmbr1", net0)
}

func TestDeployNetworkNeedsZone(t *testing.T) {
	host := &fakeHost{}
	_, err := New(host, nil).Deploy(context.Background(), services(), Options{
		DefaultNode:   "pve1",
		Network:       "swarm",
		CreateNetwork: true,
	})
	assert.ErrorIs(t, err, ErrNoZone)
	assert.Empty(t, host.created)
}

func TestApplyUsesPlanAsGiven(t *testing.T) {
	host := &fakeHost{}
	steps, err := Plan(services(), Options{DefaultNode: "pve2"})
	require.NoError(t, err)

	results, err := New(host, nil).Apply(context.Background(), steps[1:], Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "db", results[0].Service)
	require.Len(t, host.created, 1)
	assert.Equal(t, "pve2", host.created[0].node)
	assert.Equal(t, steps[1].Params, host.created[0].params)
}

func TestStartStop(t *testing.T) {
	host := &fakeHost{}
	d := New(host, nil)

	require.NoError(t, d.Start(context.Background(), "pve1", 100))
	require.NoError(t, d.Stop(context.Background(), "pve1", 100))
	assert.Equal(t, []int{100}, host.started)
	assert.Equal(t, []int{100}, host.stopped)
}

func TestNodes(t *testing.T) {
	host := &fakeHost{nodes: []model.Node{{Node: "pve1", Status: "online"}}}
	nodes, err := New(host, nil).Nodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}
