package wizard

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// DetectionResult holds what was auto-detected on the system.
type DetectionResult struct {
	OnProxmoxNode bool   // pvesh is on PATH
	NodeName      string // local node name when OnProxmoxNode
	StackFiles    []string
	ComposeFiles  []string
}

// Detector abstracts filesystem and path lookups for testing.
type Detector interface {
	LookPath(name string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Glob(pattern string) ([]string, error)
	Hostname() (string, error)
}

// OSDetector uses the real OS for detection.
type OSDetector struct{}

func (OSDetector) LookPath(name string) (string, error) { return exec.LookPath(name) }
func (OSDetector) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSDetector) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }
func (OSDetector) Hostname() (string, error)             { return os.Hostname() }

var (
	stackNames = []string{
		"stack.yml",
		"stack.yaml",
		"swarm.yml",
		"swarm.yaml",
	}
	stackPatterns = []string{
		"*.stack.yml",
		"*.stack.yaml",
	}
	composeNames = []string{
		"docker-compose.yml",
		"docker-compose.yaml",
		"compose.yml",
		"compose.yaml",
	}
)

// Detect scans the working directory for stack and compose files and checks
// whether it runs on a Proxmox VE node.
func Detect(d Detector) DetectionResult {
	if d == nil {
		d = OSDetector{}
	}

	result := DetectionResult{}

	if _, err := d.LookPath("pvesh"); err == nil {
		result.OnProxmoxNode = true
		if name, err := d.Hostname(); err == nil {
			result.NodeName = name
		}
	}

	seen := map[string]bool{}
	for _, name := range stackNames {
		if _, err := d.Stat(name); err == nil && !seen[name] {
			seen[name] = true
			result.StackFiles = append(result.StackFiles, name)
		}
	}
	for _, pattern := range stackPatterns {
		matches, err := d.Glob(pattern)
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				result.StackFiles = append(result.StackFiles, m)
			}
		}
	}

	for _, name := range composeNames {
		if _, err := d.Stat(name); err == nil {
			result.ComposeFiles = append(result.ComposeFiles, name)
		}
	}

	return result
}
