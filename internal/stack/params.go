package stack

import (
	"github.com/GothShoot/proxmox-swarm/internal/model"
)

// optionalParams are copied only when the service sets them; the API tells
// "not supplied" apart from "supplied as empty".
var optionalParams = []string{"rootfs", "password", "features"}

// Params translates the service into the fields accepted by
// POST /nodes/{node}/lxc. vmid and ostemplate pass through as-is and may be
// nil. A hostname set in the config is ignored in favour of the service name.
func (s Service) Params() model.Params {
	params := model.Params{
		{Key: "vmid", Value: s.Config.Get("vmid")},
		{Key: "hostname", Value: s.Name},
		{Key: "ostemplate", Value: s.Config.Get("image")},
		{Key: "memory", Value: s.valueOr("memory", DefaultMemory)},
		{Key: "cores", Value: s.valueOr("cores", DefaultCores)},
		{Key: "net0", Value: s.net0()},
	}

	for _, key := range optionalParams {
		if v, ok := s.Config.Lookup(key); ok {
			params = append(params, model.Param{Key: key, Value: v})
		}
	}

	return params
}

// Node returns the target node declared by the service, if any.
func (s Service) Node() string {
	return model.Stringify(s.Config.Get("node"))
}

// VMID returns the declared vmid and whether it is an integer.
func (s Service) VMID() (int, bool) {
	switch v := s.Config.Get("vmid").(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	}
	return 0, false
}

// OnBridge returns a copy of s attached to bridge when the service does not
// choose its own network through net0 or bridge.
func (s Service) OnBridge(bridge string) Service {
	if bridge == "" || s.Config.Has("net0") || s.bridge() != "" {
		return s
	}
	cfg := make(model.Fields, len(s.Config)+1)
	for k, v := range s.Config {
		cfg[k] = v
	}
	cfg["bridge"] = bridge
	return Service{Name: s.Name, Config: cfg}
}

func (s Service) valueOr(key string, def any) any {
	if v, ok := s.Config.Lookup(key); ok {
		return v
	}
	return def
}

// net0 uses a literal net0 verbatim, else builds
// name=eth0,bridge=<bridge>[,ip=<ip>].
func (s Service) net0() any {
	if v, ok := s.Config.Lookup("net0"); ok {
		return v
	}

	bridge := s.bridge()
	if bridge == "" {
		bridge = DefaultBridge
	}
	return NetworkInterface(bridge, model.Stringify(s.Config.Get("ip")))
}

// bridge returns the declared bridge. Null and "" both count as unset since
// Proxmox rejects an empty bridge=.
func (s Service) bridge() string {
	return model.Stringify(s.Config.Get("bridge"))
}

// NetworkInterface formats a Proxmox LXC network device string.
func NetworkInterface(bridge, ip string) string {
	net := "name=eth0,bridge=" + bridge
	if ip != "" {
		net += ",ip=" + ip
	}
	return net
}
