package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GothShoot/proxmox-swarm/internal/compose"
	"github.com/GothShoot/proxmox-swarm/internal/stack"
	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/spf13/cobra"
)

var (
	validateStrict  bool
	validateCompose bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a stack file, a Compose file or your configuration",
	Long: `Without arguments, check that proxmox-swarm.yml and the environment provide
everything needed to reach the Proxmox API.

With a file, check every service it defines. Files whose name contains
"compose" (or any file with --compose) are read as Compose files; --strict
additionally runs them through the compose-spec reference loader.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "also validate Compose files against the compose-spec schema")
	validateCmd.Flags().BoolVar(&validateCompose, "compose", false, "treat the file as a Compose file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return validateConfig()
	}

	path := args[0]
	if validateCompose || isComposeFile(path) {
		return validateComposeFile(cmd, path)
	}
	return validateStackFile(path)
}

func validateConfig() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(ui.Bold("Validating configuration..."))

	errs := cfg.Validate()
	for _, ve := range errs {
		ui.ValidationErr(ve.Field, ve.Message, ve.Suggestion)
	}
	if len(errs) == 0 {
		ui.ValidationOK("host", cfg.Host)
		ui.ValidationOK("token_id", cfg.TokenID)
	}
	if cfg.Node == "" {
		ui.ValidationWarn("node", "no default node; every service must set node:")
	}

	return summarize(len(errs))
}

func validateStackFile(path string) error {
	services, err := stack.Load(path)
	if err != nil {
		printLoadError(path, err)
		return err
	}

	fmt.Println(ui.Bold(fmt.Sprintf("Validating %s...", path)))

	bad := map[string]bool{}
	failed := 0
	for _, issue := range stack.Lint(services) {
		if issue.Warning {
			ui.ValidationWarn(issue.Service+"."+issue.Field, issue.Message)
			continue
		}
		ui.ValidationErr(issue.Service+"."+issue.Field, issue.Message, issue.Suggestion)
		bad[issue.Service] = true
		failed++
	}
	for _, svc := range services {
		if !bad[svc.Name] {
			ui.ValidationOK(svc.Name, describeTarget(svc))
		}
	}

	return summarize(failed)
}

func validateComposeFile(cmd *cobra.Command, path string) error {
	_, log, err := loadConfig()
	if err != nil {
		return err
	}

	opts := []compose.Option{compose.WithLogger(log)}
	if strings.HasSuffix(path, ".j2") {
		opts = append(opts, compose.WithTemplate())
	}

	fmt.Println(ui.Bold(fmt.Sprintf("Validating %s...", path)))

	file, err := compose.ParseFile(path, opts...)
	if err != nil {
		if errors.Is(err, compose.ErrCoercion) {
			ui.ValidationErr(path, err.Error(), "")
			return summarize(1)
		}
		printLoadError(path, err)
		return err
	}

	for _, name := range file.Order {
		svc := file.Services[name]
		ui.ValidationOK(name, fmt.Sprintf("%s, %d replica(s)", orNone(svc.Image), svc.Replicas))
	}

	failed := 0
	if validateStrict {
		if _, err := compose.CheckSpec(cmd.Context(), path); err != nil {
			ui.ValidationErr("compose-spec", err.Error(), "fix the file or drop --strict")
			failed++
		} else {
			ui.ValidationOK("compose-spec", "schema valid")
		}
	}

	return summarize(failed)
}

func describeTarget(svc stack.Service) string {
	node := svc.Node()
	if node == "" {
		node = "default node"
	}
	return fmt.Sprintf("vmid %v on %s", svc.Config.Get("vmid"), node)
}

func isComposeFile(path string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(path)), "compose")
}

func summarize(failed int) error {
	fmt.Println()
	if failed == 0 {
		ui.Success("All checks passed")
		return nil
	}
	fmt.Fprintf(os.Stderr, "%d errors\n", failed)
	return fmt.Errorf("%d validation errors", failed)
}
