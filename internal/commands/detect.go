package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/mymoney/internal/importer"
)

func newDetectCommand(flags *rootFlags) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Show which institution and service an export comes from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}
			if account == "" {
				account = importer.AccountName(args[0])
			}

			d := importer.NewDetector(importer.DefaultSignatures(), e.log)
			raw, err := d.Detect(args[0], account)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if raw == nil {
				fmt.Fprintf(out, "%s: no matching signature\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%s: %s/%s account=%s rows=%d\n",
				args[0], raw.Institution, raw.Service, raw.Account, raw.Table.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account name (default: file name)")
	return cmd
}
