package cmd

import (
	"fmt"
	"os"

	"github.com/GothShoot/proxmox-swarm/internal/config"
	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/GothShoot/proxmox-swarm/internal/wizard"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a proxmox-swarm.yml config file interactively",
	Long: `Look for stack and Compose files and a local Proxmox VE installation,
then ask for the API address, token and deploy defaults and write them to
proxmox-swarm.yml.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.FileName + ".yml"

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("%s already exists.\n", configPath)
		fmt.Print("Overwrite? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println(ui.Bold("Scanning environment..."))
	detection := wizard.Detect(nil)

	answers, err := wizard.Run(detection)
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	content, err := wizard.GenerateConfig(*answers)
	if err != nil {
		return fmt.Errorf("generating config: %w", err)
	}

	// the file may hold the token secret
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ui.Success(fmt.Sprintf("Created %s", configPath))
	fmt.Println()
	next := "proxmox-swarm deploy stack.yml --dry-run"
	if len(detection.StackFiles) > 0 {
		next = "proxmox-swarm deploy " + detection.StackFiles[0] + " --dry-run"
	}
	fmt.Printf("Next step: %s\n", ui.Bold(next))
	fmt.Printf("           %s\n", ui.Hint("or run 'proxmox-swarm validate' to check the connection settings"))

	return nil
}
