package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/GothShoot/proxmox-swarm/internal/config"
	"github.com/GothShoot/proxmox-swarm/internal/deploy"
	"github.com/GothShoot/proxmox-swarm/internal/loader"
	"github.com/GothShoot/proxmox-swarm/internal/stack"
	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/spf13/cobra"
)

var dryRun bool

var deployCmd = &cobra.Command{
	Use:   "deploy <stack.yml>",
	Short: "Create one LXC container per service of a stack file",
	Long: `Translate every service of a stack file into container parameters and
create it on its node. A service runs on the node named by its node: field,
or on --node when it has none. If any service has no node, nothing is created.

With --sdn-network, services that set neither net0 nor bridge are attached
to that VNet; --create-sdn creates it in --sdn-zone first.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)

	flags := deployCmd.Flags()
	flags.BoolVar(&dryRun, "dry-run", false, "print the resolved parameters without calling the API")
	flags.String("sdn-network", "", "SDN VNet to attach services to")
	flags.String("sdn-zone", "", "SDN zone for --create-sdn")
	flags.Int("sdn-vlan", 0, "VLAN tag for --create-sdn")
	flags.Bool("create-sdn", false, "create the SDN VNet before deploying")

	bindFlags(flags, map[string]string{
		"sdn.network": "sdn-network",
		"sdn.zone":    "sdn-zone",
		"sdn.vlan":    "sdn-vlan",
		"sdn.create":  "create-sdn",
	})
}

func runDeploy(cmd *cobra.Command, args []string) error {
	path := args[0]

	services, err := stack.Load(path)
	if err != nil {
		printLoadError(path, err)
		return err
	}
	if len(services) == 0 {
		ui.Warn(fmt.Sprintf("%s defines no services", path))
		return nil
	}

	if dryRun {
		return planOnly(path, services)
	}

	cfg, deployer, err := connect()
	if err != nil {
		return err
	}

	fmt.Println(ui.Bold(fmt.Sprintf("Deploying %d services from %s...", len(services), path)))

	opts := deployOptions(cfg)
	steps, err := deploy.Plan(services, opts)
	if err != nil {
		printDeployError(err)
		return err
	}

	results, err := deployer.Apply(cmd.Context(), steps, opts)
	printResults(steps, results)
	if err != nil {
		printDeployError(err)
		return err
	}

	ui.Success(fmt.Sprintf("Created %d containers", len(results)))
	return nil
}

// planOnly prints what deploy would send, without credentials.
func planOnly(path string, services []stack.Service) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	steps, err := deploy.Plan(services, deployOptions(cfg))
	if err != nil {
		printDeployError(err)
		return err
	}

	fmt.Println(ui.Bold(fmt.Sprintf("Plan for %s (dry run)", path)))
	for _, step := range steps {
		fmt.Println()
		fmt.Printf("  %s %s\n", ui.Bold(step.Service), ui.Dim("→ "+step.Node))
		ui.Params(step.Params)
	}
	return nil
}

func deployOptions(cfg *config.Config) deploy.Options {
	return deploy.Options{
		DefaultNode:   cfg.Node,
		Network:       cfg.SDN.Network,
		Zone:          cfg.SDN.Zone,
		VLANTag:       cfg.VLANTag(),
		CreateNetwork: cfg.SDN.Create,
	}
}

// printResults reports every planned step. Steps after a failure are
// shown as skipped.
func printResults(steps []deploy.Step, results []deploy.Result) {
	for i, step := range steps {
		if i >= len(results) {
			ui.StepSkipped(step.Service, step.Node)
			continue
		}
		if r := results[i]; r.Err != nil {
			ui.StepFailed(step.Service, step.Node)
		} else {
			ui.StepDone(step.Service, step.Node, r.UPID)
		}
	}
}

func printLoadError(path string, err error) {
	switch {
	case loader.IsAccess(err):
		fmt.Fprint(os.Stderr, ui.FormatError("Cannot read "+path, err.Error(), "check the path and its permissions"))
	case loader.IsParse(err):
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid YAML", err.Error(), ""))
	default:
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load "+path, err.Error(), ""))
	}
}

func printDeployError(err error) {
	var missing *deploy.MissingTargetError
	var svcErr *deploy.ServiceError
	switch {
	case errors.As(err, &missing):
		fmt.Fprint(os.Stderr, ui.FormatError("No target node", err.Error(),
			"add node: to each service or set a default with --node"))
	case errors.Is(err, deploy.ErrNoZone):
		fmt.Fprint(os.Stderr, ui.FormatError("Cannot create SDN network", err.Error(), "pass --sdn-zone"))
	case errors.As(err, &svcErr):
		fmt.Fprint(os.Stderr, ui.FormatError("Deploy of "+svcErr.Service+" failed", svcErr.Err.Error(),
			"containers created before this one were left in place"))
	default:
		fmt.Fprint(os.Stderr, ui.FormatError("Deploy failed", err.Error(), ""))
	}
}
