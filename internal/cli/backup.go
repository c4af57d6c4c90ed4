package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BackupResult holds the outcome of the backup and restore commands.
type BackupResult struct {
	Done       bool   `json:"done"`
	BackupDate string `json:"backupDate,omitempty"`
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "backup",
		Short:        "Snapshot the durable blob into the backup key",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer c.Close()

			if !c.Sync.Backup() {
				if err := emit(cmd, rootOpts, BackupResult{}, "nothing to back up"); err != nil {
					return err
				}
				return fmt.Errorf("no durable data to back up")
			}

			backup := c.Adapter.ReadBackup()
			result := BackupResult{Done: true}
			if backup != nil {
				result.BackupDate = backup.BackupDate
			}
			return emit(cmd, rootOpts, result, "backup written: "+result.BackupDate)
		},
	}
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "restore",
		Short:        "Copy the backup blob back into the primary key",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer c.Close()

			backup := c.Adapter.ReadBackup()
			if !c.Sync.Restore() {
				if err := emit(cmd, rootOpts, BackupResult{}, "no usable backup found"); err != nil {
					return err
				}
				return fmt.Errorf("no usable backup to restore")
			}

			result := BackupResult{Done: true}
			if backup != nil {
				result.BackupDate = backup.BackupDate
			}
			return emit(cmd, rootOpts, result, "restored backup from "+result.BackupDate)
		},
	}
}
