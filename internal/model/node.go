package model

// Node is a Proxmox VE cluster member as reported by the host API.
type Node struct {
	Node   string  `json:"node"`
	Status string  `json:"status"`
	CPU    float64 `json:"cpu"`
	MaxCPU int     `json:"maxcpu"`
	Mem    int64   `json:"mem"`
	MaxMem int64   `json:"maxmem"`
	Uptime int64   `json:"uptime"`
}

// Online reports whether the node is reachable by the cluster.
func (n Node) Online() bool {
	return n.Status == "online"
}
