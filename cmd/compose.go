package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/GothShoot/proxmox-swarm/internal/compose"
	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/spf13/cobra"
)

var composeTemplate bool

var composeCmd = &cobra.Command{
	Use:   "compose <docker-compose.yml>",
	Short: "Show the LXC service configs derived from a Compose file",
	Long: `Read a Compose file and print, per service, the image, ports,
environment, replica count and placement constraints it translates to.
Replicas and constraints are reported but never scheduled.

Use --template for Jinja2 templates (.j2): template expressions are
replaced with a placeholder before parsing.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)
	composeCmd.Flags().BoolVar(&composeTemplate, "template", false, "strip Jinja2 template syntax before parsing")
}

func runCompose(cmd *cobra.Command, args []string) error {
	path := args[0]

	_, log, err := loadConfig()
	if err != nil {
		return err
	}

	opts := []compose.Option{compose.WithLogger(log)}
	if composeTemplate || strings.HasSuffix(path, ".j2") {
		opts = append(opts, compose.WithTemplate())
	}

	file, err := compose.ParseFile(path, opts...)
	if err != nil {
		printComposeError(path, err)
		return err
	}

	if len(file.Order) == 0 {
		ui.Warn(fmt.Sprintf("%s defines no services", path))
		return nil
	}

	for _, name := range file.Order {
		printServiceConfig(name, file.Services[name])
	}
	if len(file.Volumes) > 0 {
		fmt.Println()
		fmt.Println(ui.Bold("volumes"))
		printVolumes(file.Volumes)
	}
	return nil
}

func printServiceConfig(name string, svc model.LXCServiceConfig) {
	fmt.Println()
	fmt.Println(ui.Bold(name))
	ui.Field("image", orNone(svc.Image))
	ui.Field("replicas", strconv.Itoa(svc.Replicas))
	if len(svc.Ports) > 0 {
		ui.Field("ports", strings.Join(svc.Ports, ", "))
	}
	if len(svc.Constraints) > 0 {
		ui.Field("placement", strings.Join(svc.Constraints, ", "))
	}
	if len(svc.Tags) > 0 {
		ui.Field("tags", strings.Join(svc.Tags, ";"))
	}
	if svc.VLAN != nil {
		ui.Field("vlan", strconv.Itoa(*svc.VLAN))
	}
	for _, m := range svc.Volumes {
		mount := m.Volume + ":" + m.Target
		if m.Mode != "" {
			mount += ":" + m.Mode
		}
		ui.Field("volume", mount)
	}
	keys := make([]string, 0, len(svc.Environment))
	for k := range svc.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ui.Field("env", k+"="+svc.Environment[k])
	}
}

func printVolumes(volumes map[string]model.VolumeDef) {
	names := make([]string, 0, len(volumes))
	for name := range volumes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := volumes[name]
		detail := v.Subvolume
		if v.External {
			detail += " " + ui.Dim("(external)")
		}
		ui.Field(name, detail)
		if len(v.Options) > 0 {
			ui.Field("", ui.Dim("create: "+joinOptions(v.Options)))
		}
		if len(v.MountOptions) > 0 {
			ui.Field("", ui.Dim("mount: "+joinOptions(v.MountOptions)))
		}
	}
}

func joinOptions(opts map[string]string) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+opts[k])
	}
	return strings.Join(parts, ",")
}

func printComposeError(path string, err error) {
	if errors.Is(err, compose.ErrCoercion) {
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid value in "+path, err.Error(), ""))
		return
	}
	printLoadError(path, err)
}

func orNone(s string) string {
	if s == "" {
		return ui.Dim("(none)")
	}
	return s
}
