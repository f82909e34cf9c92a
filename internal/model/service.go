package model

// DefaultReplicas is the replica count recorded when a service declares none.
const DefaultReplicas = 1

// LXCServiceConfig is the descriptive model of one Compose service.
// Replicas and Constraints are recorded hints; nothing schedules on them.
type LXCServiceConfig struct {
	Image       string
	Ports       []string
	Environment map[string]string
	Replicas    int
	Constraints []string
	Tags        []string
	VLAN        *int
	Volumes     []VolumeMount
}

// VolumeMount binds a named volume into a service.
type VolumeMount struct {
	Volume string
	Target string
	Mode   string // rw, ro, or empty
}

// VolumeDef is a top-level volume backed by a CephFS subvolume. Options
// holds what subvolume creation accepts and MountOptions what a mount accepts;
// one source option may land in both.
type VolumeDef struct {
	Name         string
	Subvolume    string
	External     bool
	Options      map[string]string
	MountOptions map[string]string
}

// ComposeFile is the translated content of a Compose document.
type ComposeFile struct {
	Services map[string]LXCServiceConfig
	Volumes  map[string]VolumeDef
	// Order lists service names as they appear in the document.
	Order []string
}

// NewComposeFile creates an empty ComposeFile.
func NewComposeFile() *ComposeFile {
	return &ComposeFile{
		Services: make(map[string]LXCServiceConfig),
		Volumes:  make(map[string]VolumeDef),
	}
}

// AddService records cfg under name, keeping document order.
func (c *ComposeFile) AddService(name string, cfg LXCServiceConfig) {
	if _, exists := c.Services[name]; !exists {
		c.Order = append(c.Order, name)
	}
	c.Services[name] = cfg
}
