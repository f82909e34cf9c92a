package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/GothShoot/proxmox-swarm/internal/config"
	"github.com/GothShoot/proxmox-swarm/internal/deploy"
	"github.com/GothShoot/proxmox-swarm/internal/logger"
	"github.com/GothShoot/proxmox-swarm/internal/proxmox"
	"github.com/GothShoot/proxmox-swarm/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "PROXMOX_SWARM"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "proxmox-swarm",
	Short: "Deploy Compose-style stacks as Proxmox LXC containers",
	Long: `proxmox-swarm translates stack and Compose files into LXC container
parameters and drives the Proxmox VE API to create, start and stop them.

Connection settings come from proxmox-swarm.yml, PROXMOX_SWARM_* environment
variables or the flags below, in increasing order of precedence.`,
	SilenceUsage: true,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: proxmox-swarm.yml)")
	flags.String("host", "", "Proxmox VE host, e.g. https://pve.local:8006")
	flags.String("token-id", "", "API token ID (user@realm!name)")
	flags.String("token", "", "API token secret")
	flags.String("node", "", "default target node")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	bindFlags(flags, map[string]string{
		"host":      "host",
		"token_id":  "token-id",
		"token":     "token",
		"node":      "node",
		"insecure":  "insecure",
		"log_level": "log-level",
	})
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(config.FileName)
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}

// loadConfig reads the merged configuration and builds the logger for it.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'proxmox-swarm init' to create a config file"))
		return nil, nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid log level", err.Error(), "use one of debug, info, warn, error"))
		return nil, nil, err
	}
	return cfg, log, nil
}

// connect validates the API settings and returns a deployer bound to the
// configured host.
func connect() (*config.Config, *deploy.Deployer, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		first := errs[0]
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid configuration", first.Error(), first.Suggestion))
		return nil, nil, first
	}

	client := proxmox.New(cfg.Host, cfg.TokenID, cfg.Token, cfg.Insecure)
	log.Debug("using Proxmox API", zap.String("url", client.BaseURL))
	return cfg, deploy.New(client, log), nil
}

// bindFlags maps config keys to the flags that override them.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
