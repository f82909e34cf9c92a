package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List the nodes of the Proxmox cluster",
	Args:  cobra.NoArgs,
	RunE:  runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
	_, deployer, err := connect()
	if err != nil {
		return err
	}

	nodes, err := deployer.Nodes(cmd.Context())
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to list nodes", err.Error(), "check host, token_id and token"))
		return err
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Node < nodes[j].Node })
	for _, n := range nodes {
		if !n.Online() {
			fmt.Printf("  %s %s\n", ui.Dim("○"), ui.Dim(n.Node+" ("+n.Status+")"))
			continue
		}
		fmt.Printf("  %s %s %s\n", ui.Bold("●"), ui.Bold(n.Node),
			ui.Dim(fmt.Sprintf("cpu %.0f%% of %d, mem %s / %s", n.CPU*100, n.MaxCPU, humanBytes(n.Mem), humanBytes(n.MaxMem))))
	}
	return nil
}

func humanBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
