package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/mymoney/internal/gitops"
	"github.com/cleared-dev/mymoney/internal/importer"
	"github.com/cleared-dev/mymoney/internal/ingestlog"
	"github.com/cleared-dev/mymoney/internal/institution"
	"github.com/cleared-dev/mymoney/internal/model"
)

type ingestOptions struct {
	as      string // "<institution>/<service>"
	account string
	dryRun  bool
}

func newIngestCommand(flags *rootFlags) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest <folder|file>",
		Short: "Normalize exports and append them to the store",
		Long: `Detects the source of every CSV export, normalizes it, appends the
records to the configured store, archives the raw export and its sanity
table and writes one ingest-log row per file. A folder is scanned one level
deep; each subfolder name becomes the account name of its files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}
			return runIngest(cmd, e, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.as, "as", "", "skip detection and read the file as institution/service, e.g. wellsfargo/credit")
	cmd.Flags().StringVar(&opts.account, "account", "", "account name for a single file (default: file name)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "normalize and report without writing anything")

	return cmd
}

func parseAs(s string) (string, model.ServiceKind, error) {
	inst, svc, ok := strings.Cut(s, "/")
	if !ok || inst == "" {
		return "", 0, fmt.Errorf("--as wants institution/service, got %q", s)
	}
	kind, err := model.ParseServiceKind(svc)
	if err != nil {
		return "", 0, err
	}
	return strings.ToLower(inst), kind, nil
}

func runBatch(e *env, path string, opts ingestOptions) (*importer.Batch, error) {
	p := importer.NewPipeline(importer.DefaultSignatures(), institution.DefaultRegistry(), e.log)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		if opts.as != "" {
			return nil, fmt.Errorf("--as needs a single file, %s is a folder", path)
		}
		return p.Run(path)
	}

	account := opts.account
	if account == "" {
		account = importer.AccountName(path)
	}
	if opts.as != "" {
		inst, svc, err := parseAs(opts.as)
		if err != nil {
			return nil, err
		}
		return p.RunAs(path, inst, svc, account)
	}
	return p.RunFile(path, account)
}

func runIngest(cmd *cobra.Command, e *env, path string, opts ingestOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	batch, err := runBatch(e, path, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, s := range batch.Skipped {
		fmt.Fprintf(out, "skipped %s: no matching signature\n", s)
	}
	if len(batch.Results) == 0 {
		fmt.Fprintln(out, "nothing to ingest")
		return nil
	}
	if opts.dryRun {
		printBatch(cmd, batch)
		return nil
	}

	st, closeStore, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.AppendExpenses(ctx, batch.Expenses()); err != nil {
		return fmt.Errorf("storing expenses: %w", err)
	}
	if err := st.AppendTrades(ctx, batch.Trades()); err != nil {
		return fmt.Errorf("storing trades: %w", err)
	}
	if err := st.AppendBalances(ctx, batch.Balances()); err != nil {
		return fmt.Errorf("storing balances: %w", err)
	}

	arch, closeArch, err := e.archiver(ctx)
	if err != nil {
		return err
	}
	defer closeArch()

	runID := ingestlog.NewRunID()
	now := time.Now()
	entries := make([]ingestlog.Entry, 0, len(batch.Results))
	for _, td := range batch.Results {
		// The sanity copy goes first: the raw archiver may move the source.
		if _, err := arch.ArchiveSanity(ctx, td); err != nil {
			return err
		}
		if _, err := arch.ArchiveRaw(ctx, td); err != nil {
			return err
		}
		entries = append(entries, ingestlog.EntryFor(td, runID, now))
	}
	if err := ingestlog.Append(e.root, entries); err != nil {
		e.log.Warn().Err(err).Msg("failed to write ingest log")
	}

	printBatch(cmd, batch)

	if e.cfg.Git.AutoCommit && gitops.IsRepo(e.root) {
		author := gitops.Author{Name: e.cfg.Git.AuthorName, Email: e.cfg.Git.AuthorEmail}
		msg := gitops.IngestMessage(runID, len(batch.Results), len(batch.Expenses()), len(batch.Trades()))
		hash, err := gitops.CommitAll(e.root, msg, author)
		if err != nil {
			return fmt.Errorf("committing ingest: %w", err)
		}
		if hash != "" {
			fmt.Fprintf(out, "committed %s\n", hash)
		}
	}
	return nil
}

func printBatch(cmd *cobra.Command, b *importer.Batch) {
	out := cmd.OutOrStdout()
	for _, td := range b.Results {
		fmt.Fprintf(out, "%s: %s/%s account=%s %s rows=%d invalid=%d\n",
			td.Source, td.Institution, td.Service, td.Account, td.Out, td.Rows(), td.Invalid())
	}
	fmt.Fprintf(out, "%d file(s): %d expense(s), %d trade(s), %d balance(s)\n",
		len(b.Results), len(b.Expenses()), len(b.Trades()), len(b.Balances()))
}
