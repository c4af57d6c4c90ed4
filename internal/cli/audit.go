package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Audit the durable store against the seed baseline",
		Long: `Compare record counts between the seed baseline and the durable blob.
A missing blob is itself reported as an inconsistency. Exits non-zero
when drift is found so the audit can gate scripts.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCore(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer c.Close()

			report := c.Sync.CheckConsistency()

			text := "consistent"
			if !report.Consistent {
				text = "inconsistent:\n  " + strings.Join(report.Issues, "\n  ")
			}
			if err := emit(cmd, rootOpts, report, text); err != nil {
				return err
			}
			if !report.Consistent {
				return fmt.Errorf("audit found %d issue(s)", len(report.Issues))
			}
			return nil
		},
	}
}
