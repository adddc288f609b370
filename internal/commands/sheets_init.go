package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/mymoney/internal/config"
	"github.com/cleared-dev/mymoney/internal/store/sheetsstore"
)

func newSheetsInitCommand(flags *rootFlags) *cobra.Command {
	var title, share string

	cmd := &cobra.Command{
		Use:   "sheets-init",
		Short: "Create the spreadsheet used by the sheets storage backend",
		Long: `Creates a spreadsheet with Expenses, Trades and Balances worksheets,
or adds the missing worksheets to the configured one, and records its ID in
mymoney.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			sc := &e.cfg.Storage.Sheets
			if title == "" {
				title = sc.Title
			}
			if share == "" {
				share = sc.Share
			}
			id, err := sheetsstore.CreateStructure(ctx, sc.Credentials, sc.SpreadsheetID, title, share, e.log)
			if err != nil {
				return err
			}

			sc.SpreadsheetID = id
			sc.Title = title
			sc.Share = share
			e.cfg.Storage.Backend = "sheets"
			if err := config.Save(filepath.Join(e.root, config.FileName), e.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spreadsheet %s ready\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "spreadsheet title (default from config)")
	cmd.Flags().StringVar(&share, "share", "", "email address to share the spreadsheet with")

	return cmd
}
