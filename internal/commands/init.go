package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/mymoney/internal/config"
	"github.com/cleared-dev/mymoney/internal/gitops"
	"github.com/cleared-dev/mymoney/internal/store"
)

func newInitCommand(flags *rootFlags) *cobra.Command {
	var backend string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a data folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flags.dataDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(config.DataDir(dir))
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, backend, !noGit)
		},
	}

	cmd.Flags().StringVar(&backend, "storage", "csv", "storage backend: csv, sqlite or sheets")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, backend string, withGit bool) error {
	kind, err := store.ParseKind(backend)
	if err != nil {
		return err
	}

	if err := store.Init(dir); err != nil {
		return err
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}
	cfg := config.Default()
	cfg.Storage.Backend = string(kind)
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Keep the empty layout folders in git.
	for _, d := range []string{store.CoreDir, store.RawDir, store.SanityDir, store.LogsDir} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if !withGit || gitops.IsRepo(dir) {
		fmt.Fprintf(out, "Initialized mymoney data folder at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: mymoney data folder", author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized mymoney data folder at %s (%s)\n", dir, hash)
	return nil
}
