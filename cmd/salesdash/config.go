package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/salesdash/internal/config"
	"github.com/vango-dev/salesdash/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the salesdash configuration",
		Long: `Write, inspect and check the salesdash configuration.

The effective configuration is built from defaults, then the file
(salesdash.json, salesdash.yaml or salesdash.yml in the working
directory, or --config), then SALESDASH_* environment variables.`,
	}

	cmd.AddCommand(configInitCmd(), configShowCmd(), configCheckCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		dir    string
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a configuration file holding every default.

Examples:
  salesdash config init
  salesdash config init --format=yaml
  salesdash config init --dir=deploy --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := initConfig(dir, format, force)
			if err != nil {
				return err
			}
			success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the file to")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "File format (json, yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

// initConfig writes the default configuration into dir and returns its path.
func initConfig(dir, format string, force bool) (string, error) {
	var name string
	switch format {
	case "json":
		name = config.ConfigFileName
	case "yaml", "yml":
		name = "salesdash.yaml"
	default:
		return "", errors.New("E102").WithDetail(fmt.Sprintf("--format must be json or yaml, got %q", format))
	}

	if !force && config.Exists(dir) {
		return "", errors.New("E103").WithDetail("A configuration file already exists in " + dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New("E101").Wrap(err)
	}

	path := filepath.Join(dir, name)
	if err := config.New().SaveTo(path); err != nil {
		return "", err
	}
	return path, nil
}

func configShowCmd() *cobra.Command {
	var (
		path   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(path, os.LookupEnv)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "yaml", "yml":
				data, err = yaml.Marshal(cfg)
			default:
				data, err = json.MarshalIndent(cfg, "", "  ")
				data = append(data, '\n')
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Configuration file (default: salesdash.{json,yaml,yml})")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (json, yaml)")

	return cmd
}

func configCheckCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(path, os.LookupEnv)
			if err != nil {
				return err
			}
			source := cfg.Path()
			if source == "" {
				source = "defaults"
			}
			success("Configuration is valid (%s)", source)
			info("Listening on %s, API at %s", cfg.Server.Addr(), cfg.API.BaseURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "config", "c", "", "Configuration file (default: salesdash.{json,yaml,yml})")

	return cmd
}
