package stack

import (
	"fmt"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/GothShoot/proxmox-swarm/internal/util"
)

// MinVMID is the lowest container ID Proxmox VE assigns.
const MinVMID = 100

// Issue is a problem Lint found in one service. Warnings do not stop a
// deploy; errors would make the API reject the container.
type Issue struct {
	Service    string
	Field      string
	Message    string
	Suggestion string
	Warning    bool
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s.%s: %s", i.Service, i.Field, i.Message)
}

// Lint checks services against what POST /nodes/{node}/lxc accepts. The
// translation itself never rejects a service, so this is the only place
// duplicate or missing vmids are reported.
func Lint(services []Service) []Issue {
	var issues []Issue
	seen := map[int]string{}

	for _, svc := range services {
		add := func(field, msg, hint string, warn bool) {
			issues = append(issues, Issue{Service: svc.Name, Field: field, Message: msg, Suggestion: hint, Warning: warn})
		}

		if !util.ValidHostname(svc.Name) {
			add("hostname", fmt.Sprintf("%q is not a valid hostname", svc.Name),
				fmt.Sprintf("rename the service, e.g. %q", util.SanitizeHostname(svc.Name)), false)
		}

		switch vmid, ok := svc.VMID(); {
		case !svc.Config.Has("vmid") || svc.Config.Get("vmid") == nil:
			add("vmid", "vmid is required", "pick a free container ID, e.g. 100", false)
		case !ok:
			add("vmid", fmt.Sprintf("vmid must be an integer, got %s", model.TypeName(svc.Config.Get("vmid"))), "", false)
		case vmid < MinVMID:
			add("vmid", fmt.Sprintf("vmid %d is below %d", vmid, MinVMID), "", false)
		default:
			if other, dup := seen[vmid]; dup {
				add("vmid", fmt.Sprintf("vmid %d is also used by %s", vmid, other), "the second create will fail", true)
			} else {
				seen[vmid] = svc.Name
			}
		}

		if model.Stringify(svc.Config.Get("image")) == "" {
			add("image", "image is required", "use a template volume, e.g. local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst", false)
		}

		for _, key := range []string{"memory", "cores"} {
			if v, ok := svc.Config.Lookup(key); ok && !isPositiveInt(v) {
				add(key, fmt.Sprintf("%s must be a positive integer", key), "", false)
			}
		}

		if svc.Config.Has("net0") && svc.Config.Has("bridge") {
			add("bridge", "bridge is ignored because net0 is set", "", true)
		}
	}

	return issues
}

func isPositiveInt(v any) bool {
	switch n := v.(type) {
	case int:
		return n > 0
	case int64:
		return n > 0
	case uint64:
		return n > 0
	}
	return false
}
