package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <node> <vmid>",
	Short: "Start an LXC container",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args, "start")
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <node> <vmid>",
	Short: "Stop an LXC container",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(cmd, args, "stop")
	},
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd)
}

func runLifecycle(cmd *cobra.Command, args []string, action string) error {
	node := args[0]
	vmid, err := parseVMID(args[1])
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid vmid", err.Error(), "vmid is the numeric container ID, e.g. 100"))
		return err
	}

	_, deployer, err := connect()
	if err != nil {
		return err
	}

	if action == "start" {
		err = deployer.Start(cmd.Context(), node, vmid)
	} else {
		err = deployer.Stop(cmd.Context(), node, vmid)
	}
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError(fmt.Sprintf("Failed to %s %d on %s", action, vmid, node), err.Error(), ""))
		return err
	}

	ui.Success(fmt.Sprintf("Requested %s of %d on %s", action, vmid, node))
	return nil
}

func parseVMID(s string) (int, error) {
	vmid, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if vmid < 100 {
		return 0, fmt.Errorf("vmid %d is below 100", vmid)
	}
	return vmid, nil
}
