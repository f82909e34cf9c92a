// Package stack loads simplified stack files and turns each service into
// Proxmox LXC provisioning parameters.
package stack

import (
	"github.com/GothShoot/proxmox-swarm/internal/loader"
	"github.com/GothShoot/proxmox-swarm/internal/model"
)

// Defaults applied when a service leaves a field out.
const (
	DefaultMemory = 512
	DefaultCores  = 1
	DefaultBridge = "vmbr0"
)

// Service is one named entry of a stack file. The name doubles as the
// container hostname.
type Service struct {
	Name   string
	Config model.Fields
}

// Load reads the stack file at path. Services keep document order.
func Load(path string) ([]Service, error) {
	entries, err := loader.Load(path, "services")
	if err != nil {
		return nil, err
	}
	return fromEntries(entries), nil
}

// Decode translates an in-memory stack document. source names it in errors.
func Decode(data []byte, source string) ([]Service, error) {
	root, err := loader.Decode(data, source)
	if err != nil {
		return nil, err
	}
	entries, err := loader.Section(root, source, "services")
	if err != nil {
		return nil, err
	}
	return fromEntries(entries), nil
}

func fromEntries(entries []loader.Entry) []Service {
	services := make([]Service, 0, len(entries))
	for _, e := range entries {
		services = append(services, Service{Name: e.Name, Config: e.Fields})
	}
	return services
}
