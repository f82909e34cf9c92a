package main

import (
	"os"

	"github.com/GothShoot/proxmox-swarm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
