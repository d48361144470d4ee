package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"pdfvault/cli/api"
	"pdfvault/cli/config"
	"pdfvault/cli/requests"
	"pdfvault/cli/utils"
	"pdfvault/shared/constants"
)

type commandContext struct {
	serverFlag string
	configFlag string
	config     *config.Config
	prompt     passwordPrompter
}

// loadConfig reads the CLI config once. An explicit --config path is used
// as-is; otherwise the config lives under $HOME/.config/pdfvault.
func (c *commandContext) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}

	var paths config.Paths
	if len(c.configFlag) > 0 {
		paths = config.PathsFor(c.configFlag)
	} else {
		var err error
		if paths, err = config.SetupConfigDir(); err != nil {
			return config.Config{}, fmt.Errorf("setting up config dir: %w", err)
		}
	}

	cfg, err := config.ReadConfig(paths)
	if err != nil {
		return config.Config{}, fmt.Errorf("reading config: %w", err)
	}

	c.config = &cfg
	return cfg, nil
}

func (c *commandContext) client() (*api.Context, error) {
	server := strings.TrimSuffix(c.serverFlag, "/")
	if len(server) == 0 {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}

		server = cfg.Server
	}

	if len(server) == 0 {
		return nil, errors.New("no server configured, set one with --server")
	}

	return api.InitContext(server), nil
}

// email returns the requester email for shared file commands, falling back
// to the configured email.
func (c *commandContext) email(flag string) (string, error) {
	if len(flag) > 0 {
		return flag, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}

	if len(cfg.Email) == 0 {
		return "", errors.New("no email given, pass --email or set one in the config")
	}

	return cfg.Email, nil
}

// password returns the --password flag value, or prompts for one.
func (c *commandContext) password(flag string, confirm bool) (string, error) {
	if len(flag) > 0 {
		return flag, nil
	}

	return c.prompt("Password", confirm)
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(promptPassword)
}

func newRootCommandWith(prompt passwordPrompter) *cobra.Command {
	ctx := &commandContext{prompt: prompt}

	rootCmd := &cobra.Command{
		Use:           "pdfvault",
		Short:         "Encrypt, protect and share files with a PDF Vault server",
		Version:       constants.VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.serverFlag, "server", "s", "", "Vault server address")
	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newEncryptCommand(ctx))
	rootCmd.AddCommand(newDecryptCommand(ctx))
	rootCmd.AddCommand(newProtectCommand(ctx))
	rootCmd.AddCommand(newAccessCommand(ctx))
	rootCmd.AddCommand(newFilesCommand(ctx))
	rootCmd.AddCommand(newRemoveCommand(ctx))
	rootCmd.AddCommand(newShareCommand(ctx))
	rootCmd.AddCommand(newGrantCommand(ctx))
	rootCmd.AddCommand(newFetchCommand(ctx))
	rootCmd.AddCommand(newUpdateCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newACLCommand(ctx))
	rootCmd.AddCommand(newSharedCommand(ctx))
	rootCmd.AddCommand(newInfoCommand(ctx))

	return rootCmd
}

func readUpload(path string) (requests.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return requests.Upload{}, err
	}

	return requests.Upload{Name: filepath.Base(path), Data: data}, nil
}

// saveFile writes a downloaded file and reports where it went.
func saveFile(cmd *cobra.Command, out string, file api.File) error {
	path, err := utils.OutputPath(out, file.Name)
	if err != nil {
		return err
	}

	if err = os.WriteFile(path, file.Data, 0o600); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", path, formatSize(len(file.Data)))
	return nil
}
