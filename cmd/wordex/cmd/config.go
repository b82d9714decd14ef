package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/wordex/configs"
	"github.com/Aman-CERP/wordex/internal/config"
	"github.com/Aman-CERP/wordex/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage wordex configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/wordex/config.yaml)
  3. Project config (.wordex.yaml)
  4. Environment variables (WORDEX_*)`,
		Example: `  # Create user config from template
  wordex config init

  # Create .wordex.yaml in the current directory
  wordex config init --project

  # Show effective configuration
  wordex config show`,
	}

	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	})
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from a template",
		Long: `Create the user configuration file, or with --project a .wordex.yaml in
the current directory. An existing file is kept unless --force is given,
in which case it is backed up first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.NewWithColor(cmd.OutOrStdout(), !a.noColor)

			path, template := config.GetUserConfigPath(), configs.UserConfigTemplate
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				path, template = filepath.Join(cwd, ".wordex.yaml"), configs.ProjectConfigTemplate
			}

			if _, err := os.Stat(path); err == nil {
				if !force {
					out.Warning("Configuration already exists")
					out.KeyValue("Location", path)
					out.Status("", "Use --force to replace it (a backup is kept)")
					return nil
				}
				backup, err := config.BackupFile(path)
				if err != nil {
					return err
				}
				out.KeyValue("Backup", backup)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			out.Success("Created configuration")
			out.KeyValue("Location", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	cmd.Flags().BoolVar(&project, "project", false, "Create .wordex.yaml in the current directory")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				var err error
				if cfg, err = a.config(); err != nil {
					return err
				}
			case "defaults":
				cfg = config.NewConfig()
			case "user":
				user, err := config.LoadUserConfig()
				if err != nil {
					return err
				}
				if user == nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No user configuration at %s\n", config.GetUserConfigPath())
					return nil
				}
				cfg = user
			default:
				return fmt.Errorf("invalid --source %q: must be merged, user or defaults", source)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user or defaults")
	return cmd
}
