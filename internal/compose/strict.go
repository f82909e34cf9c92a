package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GothShoot/proxmox-swarm/internal/util"
	"github.com/compose-spec/compose-go/v2/cli"
)

// CheckSpec loads path with the compose-spec reference loader and returns
// the service names it accepted. It is stricter than ParseFile: unknown
// keys, bad port syntax and schema violations are errors.
func CheckSpec(ctx context.Context, path string) ([]string, error) {
	opts, err := cli.NewProjectOptions(
		[]string{path},
		cli.WithName(projectName(path)),
		cli.WithInterpolation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("project options: %w", err)
	}

	project, err := cli.ProjectFromOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compose-spec: %w", err)
	}

	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func projectName(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	name := util.SanitizeHostname(strings.ToLower(dir))
	if name == "" {
		return "stack"
	}
	return name
}
