package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"pdfvault/shared"
)

type permissionFlags struct {
	read   bool
	write  bool
	delete bool
}

func (p *permissionFlags) register(cmd *cobra.Command, defaultRead bool) {
	cmd.Flags().BoolVar(&p.read, "read", defaultRead, "Allow reading the file")
	cmd.Flags().BoolVar(&p.write, "write", false, "Allow replacing the file")
	cmd.Flags().BoolVar(&p.delete, "delete", false, "Allow deleting the file")
}

func (p *permissionFlags) changed(cmd *cobra.Command) bool {
	flags := cmd.Flags()
	return flags.Changed("read") || flags.Changed("write") || flags.Changed("delete")
}

func (p *permissionFlags) permissions() shared.Permissions {
	return shared.Permissions{Read: p.read, Write: p.write, Delete: p.delete}
}

func newShareCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string
	var perms permissionFlags

	cmd := &cobra.Command{
		Use:   "share <file>",
		Short: "Share a file, granting its owner access",
		Long: "Share a file. The owner is granted read access unless " +
			"permission flags are passed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := ctx.email(emailFlag)
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

			var ownerPerms *shared.Permissions
			if perms.changed(cmd) {
				p := perms.permissions()
				ownerPerms = &p
			}

			share, err := client.ShareFile(upload, email, ownerPerms)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Shared %s as %s\n", args[0], share.FileID)
			printACL(cmd, share.ACL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Owner email")
	perms.register(cmd, true)
	return cmd
}

func newGrantCommand(ctx *commandContext) *cobra.Command {
	var perms permissionFlags

	cmd := &cobra.Command{
		Use:   "grant <id> <email>",
		Short: "Grant or update a user's access to a shared file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			acl, err := client.GrantAccess(args[0], args[1], perms.permissions())
			if err != nil {
				return err
			}

			printACL(cmd, acl.ACL)
			return nil
		},
	}

	perms.register(cmd, true)
	return cmd
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string
	var out string

	cmd := &cobra.Command{
		Use:   "fetch <id>",
		Short: "Download a shared file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := ctx.email(emailFlag)
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			file, err := client.FetchSharedFile(args[0], email)
			if err != nil {
				return err
			}

			return saveFile(cmd, out, file)
		},
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Requester email")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "update <id> <file>",
		Short: "Replace the contents of a shared file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := ctx.email(emailFlag)
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			upload, err := readUpload(args[1])
			if err != nil {
				return err
			}

			info, err := client.UpdateSharedFile(args[0], email, upload)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", info.FileID, formatSize(info.Size))
			return nil
		},
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Requester email")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a shared file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := ctx.email(emailFlag)
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}

			if err = client.DeleteSharedFile(args[0], email); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&emailFlag, "email", "e", "", "Requester email")
	return cmd
}

func newACLCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "acl <id>",
		Short: "Show who can access a shared file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			acl, err := client.GetAccessList(args[0])
			if err != nil {
				return err
			}

			printACL(cmd, acl.ACL)
			return nil
		},
	}
}

func newSharedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shared",
		Short: "List shared files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			files, err := client.GetSharedFiles()
			if err != nil {
				return err
			}

			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No shared files")
				return nil
			}

			rows := make([][]string, 0, len(files))
			for _, file := range files {
				rows = append(rows, []string{
					file.FileID,
					file.OriginalName,
					file.OwnerEmail,
					formatSize(file.Size),
					formatCount(file.Grants),
					formatTime(file.CreatedAt),
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Owner", "Size", "Grants", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}))
			return nil
		},
	}
}

func printACL(cmd *cobra.Command, grants []shared.AccessGrant) {
	if len(grants) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No grants")
		return
	}

	rows := make([][]string, 0, len(grants))
	for _, grant := range grants {
		rows = append(rows, []string{
			grant.Email,
			yesNo(grant.Permissions.Read),
			yesNo(grant.Permissions.Write),
			yesNo(grant.Permissions.Delete),
			formatTime(grant.GrantedAt),
			formatTime(grant.UpdatedAt),
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), renderTable(
		[]string{"Email", "Read", "Write", "Delete", "Granted", "Updated"},
		rows,
		nil))
}
