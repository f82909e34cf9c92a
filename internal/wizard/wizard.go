package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// Run executes the interactive wizard and returns the user's answers.
func Run(detection DetectionResult) (*WizardAnswers, error) {
	answers := &WizardAnswers{
		LogLevel: "info",
		SDNZone:  "localzone",
	}

	var hints []string
	if detection.OnProxmoxNode {
		hints = append(hints, "Running on a Proxmox VE node")
		answers.Host = "localhost"
		answers.Node = detection.NodeName
		answers.Insecure = true
	}
	if len(detection.StackFiles) > 0 {
		hints = append(hints, fmt.Sprintf("Stack files found: %s", strings.Join(detection.StackFiles, ", ")))
	}
	if len(detection.ComposeFiles) > 0 {
		hints = append(hints, fmt.Sprintf("Compose files found: %s", strings.Join(detection.ComposeFiles, ", ")))
	}

	desc := "Address of the Proxmox VE API, e.g. https://pve.local:8006"
	if len(hints) > 0 {
		desc += "\n\nAuto-detected:\n  " + strings.Join(hints, "\n  ")
	}

	// Step 1: API access
	apiForm := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Proxmox host").
				Description(desc).
				Value(&answers.Host).
				Validate(required("host")),
			huh.NewInput().
				Title("API token ID").
				Description("Format: user@realm!tokenname").
				Placeholder("root@pam!swarm").
				Value(&answers.TokenID).
				Validate(tokenID),
			huh.NewInput().
				Title("API token secret (optional)").
				Description("Leave empty to supply it through PROXMOX_SWARM_TOKEN").
				EchoMode(huh.EchoModePassword).
				Value(&answers.Token),
			huh.NewConfirm().
				Title("Skip TLS certificate verification?").
				Description("Needed for the self-signed certificate of a fresh install").
				Value(&answers.Insecure),
		),
	)

	if err := apiForm.Run(); err != nil {
		return nil, err
	}

	// Step 2: deploy defaults
	vlan := ""
	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Default target node").
				Description("Used for services that do not set node:").
				Value(&answers.Node),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&answers.LogLevel),
			huh.NewConfirm().
				Title("Attach services to an SDN network?").
				Value(&answers.EnableSDN),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SDN VNet name").
				Placeholder("swarm0").
				Value(&answers.SDNNetwork).
				Validate(required("network")),
			huh.NewInput().
				Title("SDN zone").
				Value(&answers.SDNZone).
				Validate(required("zone")),
			huh.NewInput().
				Title("VLAN tag (optional)").
				Value(&vlan).
				Validate(vlanTag),
			huh.NewConfirm().
				Title("Create the VNet on deploy?").
				Value(&answers.SDNCreate),
		).WithHideFunc(func() bool { return !answers.EnableSDN }),
	}

	form := huh.NewForm(groups...)
	if err := form.Run(); err != nil {
		return nil, err
	}

	if answers.EnableSDN && vlan != "" {
		answers.SDNVLAN, _ = strconv.Atoi(strings.TrimSpace(vlan))
	}

	return answers, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func tokenID(s string) error {
	user, name, ok := strings.Cut(s, "!")
	if !ok || !strings.Contains(user, "@") || name == "" {
		return fmt.Errorf("expected user@realm!tokenname")
	}
	return nil
}

func vlanTag(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4094 {
		return fmt.Errorf("VLAN tag must be between 1 and 4094")
	}
	return nil
}
