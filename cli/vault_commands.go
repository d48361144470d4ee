package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"pdfvault/cli/utils"
)

const encryptedExt = ".enc"

func newEncryptCommand(ctx *commandContext) *cobra.Command {
	var password string
	var out string
	var generate bool
	var copyPassword bool

	cmd := &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a file with a password",
		Long: "Encrypt a file with a password. Without --password you are " +
			"prompted for one, or pass --generate to have the server " +
			"generate one and print it once.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if generate && len(password) > 0 {
				return errors.New("--password and --generate can't be used together")
			}

			if !generate {
				var err error
				if password, err = ctx.password(password, true); err != nil {
					return err
				}
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			upload, err := readUpload(args[0])
			if err != nil {
				return err
			}

			encrypted, err := client.EncryptFile(upload, password)
			if err != nil {
				return err
			}

			path, err := utils.OutputPath(out, upload.Name+encryptedExt)
			if err != nil {
				return err
			}

			if err = os.WriteFile(path, encrypted.Data, 0o600); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Encrypted %s -> %s (%s)\n", args[0], path, formatSize(len(encrypted.Data)))
			fmt.Fprintf(w, "File ID: %s\n", encrypted.FileID)

			if len(encrypted.GeneratedPassword) > 0 {
				fmt.Fprintf(w, "Generated password: %s\n", encrypted.GeneratedPassword)
				if copyPassword {
					if err = clipboard.WriteAll(encrypted.GeneratedPassword); err != nil {
						return fmt.Errorf("copying password: %w", err)
					}

					fmt.Fprintln(w, "Password copied to clipboard")
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password to encrypt with (prompted for if empty)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default <file>.enc)")
	cmd.Flags().BoolVarP(&generate, "generate", "g", false, "Have the server generate a random password")
	cmd.Flags().BoolVar(&copyPassword, "copy", false, "Copy a generated password to the clipboard")
	return cmd
}

func newDecryptCommand(ctx *commandContext) *cobra.Command {
	var password string
	var out string

	cmd := &cobra.Command{
		Use:   "decrypt <file>",
		Short: "Decrypt a file encrypted by the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := ctx.password(password, false)
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			upload, err := readUpload(args[0])
			if err != nil {
				return err
			}

			file, err := client.DecryptFile(upload, secret)
			if err != nil {
				return err
			}

			return saveFile(cmd, out, file)
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password the file was encrypted with (prompted for if empty)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path")
	return cmd
}

func newProtectCommand(ctx *commandContext) *cobra.Command {
	var identifier string
	var noQR bool

	cmd := &cobra.Command{
		Use:   "protect <file>",
		Short: "Store a file that can only be fetched with a 2FA code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(identifier) == 0 {
				return errors.New("--identifier is required")
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			upload, err := readUpload(args[0])
			if err != nil {
				return err
			}

			protected, err := client.ProtectFile(upload, identifier)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "File ID: %s\n", protected.FileID)
			fmt.Fprintf(w, "Secret:  %s\n", protected.Secret)
			fmt.Fprintf(w, "URI:     %s\n", protected.URI)

			if !noQR {
				fmt.Fprintln(w, "\nScan with an authenticator app:")
				qrterminal.GenerateHalfBlock(protected.URI, qrterminal.L, w)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "Label shown in the authenticator app (e.g. an email)")
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "Don't print the QR code")
	return cmd
}

func newAccessCommand(ctx *commandContext) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "access <id> <code>",
		Short: "Fetch a protected file with a 2FA code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			file, err := client.AccessProtectedFile(args[0], args[1])
			if err != nil {
				return err
			}

			return saveFile(cmd, out, file)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path")
	return cmd
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List 2FA protected files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			files, err := client.GetProtectedFiles()
			if err != nil {
				return err
			}

			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No protected files")
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				rows = append(rows, []string{
					file.FileID,
					file.OriginalName,
					file.Identifier,
					formatSize(file.Size),
					formatTime(file.CreatedAt),
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Identifier", "Size", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a 2FA protected file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			if err = client.RemoveProtectedFile(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show information about the vault server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			info, err := client.GetServerInfo()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Server:      %s\n", client.Server)
			fmt.Fprintf(w, "Version:     %s\n", info.Version)
			fmt.Fprintf(w, "Max upload:  %s\n", formatSize(int(info.MaxUploadSize)))
			fmt.Fprintf(w, "TOTP issuer: %s\n", info.TOTPIssuer)
			return nil
		},
	}
}
