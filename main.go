package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/meadow-cloud/sitectl/config"
	"github.com/meadow-cloud/sitectl/internal/allocator"
	"github.com/meadow-cloud/sitectl/internal/creator"
	"github.com/meadow-cloud/sitectl/internal/executor"
	"github.com/meadow-cloud/sitectl/internal/guest"
	"github.com/meadow-cloud/sitectl/internal/preflight"
	"github.com/meadow-cloud/sitectl/internal/prompt"
	"github.com/meadow-cloud/sitectl/internal/provisioner"
	"github.com/meadow-cloud/sitectl/internal/proxmox"
	"github.com/meadow-cloud/sitectl/internal/report"
	"github.com/meadow-cloud/sitectl/internal/resolver"
	"github.com/meadow-cloud/sitectl/internal/validator"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	skipConfirm  bool
	outputFormat string
	verbose      bool
)

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

var root = &cobra.Command{
	Use:   "sitectl",
	Short: "Provision an LXC web server container on a Proxmox VE host",
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create a container, install nginx and deploy the static site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		fmt.Fprintln(os.Stderr, bannerStyle.Render("sitectl "+version))

		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := validator.Validate(cfg); err != nil {
			return fmt.Errorf("failed to validate config: %w", err)
		}

		logger := log.Default()
		client := proxmox.New(executor.New())

		terminal := prompt.New()
		if !terminal.Interactive() && !skipConfirm {
			logger.Warn("stdin is not a terminal, prompts will read from the pipe (use --yes to skip confirmation)")
		}

		pipeline := provisioner.New(
			preflight.New(),
			allocator.New(client),
			resolver.New(client, terminal, resolver.Config{TemplateStorage: cfg.TemplateStorage}),
			creator.New(client, cfg),
			guest.New(client, guest.Config{Site: cfg.Site, ProbeHost: cfg.ProbeHost, Logger: logger}),
			report.New(client, cfg, report.Config{Out: os.Stdout, Format: outputFormat, Logger: logger}),
			terminal,
			provisioner.Config{Provision: cfg, SkipConfirm: skipConfirm, Logger: logger},
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := pipeline.Run(ctx); err != nil {
			if errors.Is(err, provisioner.ErrAborted) {
				logger.Info("aborted, nothing was created")
				return nil
			}

			return err
		}

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sitectl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	flags := provisionCmd.Flags()
	flags.Int("vmid", 0, "container identifier (0 = first free from 100)")
	flags.String("hostname", config.DefaultHostname, "guest hostname")
	flags.Int("memory", config.DefaultMemoryMB, "guest memory in MB")
	flags.Int("disk", config.DefaultDiskGB, "guest rootfs size in GB")
	flags.Int("cores", config.DefaultCores, "guest CPU cores")
	flags.String("storage", config.DefaultStorage, "storage backend for the container rootfs")
	flags.String("template-storage", config.DefaultTemplateStorage, "storage backend for downloaded templates")
	flags.String("bridge", config.DefaultBridge, "host network bridge")
	flags.String("ip", config.DefaultIP, "\"dhcp\" or a static CIDR such as 192.168.1.50/24")
	flags.String("gateway", "", "gateway address for static addressing")
	flags.String("repo", config.DefaultRepo, "git repository of the static site")
	flags.String("branch", "", "branch to deploy (empty = remote default)")
	flags.String("probe-host", config.DefaultProbeHost, "host used for the guest reachability probe")

	provisionCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "skip the confirmation prompt")
	provisionCmd.Flags().StringVarP(&outputFormat, "output", "o", report.FormatText, "summary format (text or yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(provisionCmd, versionCmd)
}

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
