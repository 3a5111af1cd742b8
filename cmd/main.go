package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/brettbedarf/treestore/config"
	"github.com/brettbedarf/treestore/internal/util"
	"github.com/brettbedarf/treestore/storage"
	"github.com/brettbedarf/treestore/tree"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	dir        string
	backend    string
	verbose    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	var repo *tree.Repository

	rootCmd := &cobra.Command{
		Use:          "treestore",
		Short:        "Inspect and edit a persisted folder/file tree",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a yaml or json config file")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "d", "", "Storage directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flags.backend, "backend", "b", "", "Storage backend: file, bolt or memory (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&flags.verbose, "verbose", "v", config.InfoVerbose,
		"Log verbosity level between 1 (error) and 5 (trace)")

	repoFn := func() *tree.Repository { return repo }
	rootCmd.AddCommand(
		newTreeCmd(repoFn),
		newLsCmd(repoFn),
		newMkdirCmd(repoFn),
		newTouchCmd(repoFn),
		newRmCmd(repoFn),
		newMvCmd(repoFn),
		newResolveCmd(repoFn),
	)
	// Only the tree commands touch storage; cobra's help and completion
	// commands are added later and never see these wrappers. Storage is closed
	// whether or not the command succeeded so bolt's file lock is released.
	for _, sub := range rootCmd.Commands() {
		runE := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) (err error) {
			repo, err = openRepository(cmd, &flags)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, repo.Close()) }()
			return runE(cmd, args)
		}
	}
	return rootCmd
}

// openRepository builds the config from file and flags, initializes logging
// and opens the repository. A freshly created root is saved right away so its
// id stays valid for later invocations.
func openRepository(cmd *cobra.Command, flags *globalFlags) (*tree.Repository, error) {
	cfg := config.NewDefaultConfig()
	if flags.configPath != "" {
		override, err := config.LoadConfigOverrideFile(flags.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg.Merge(override)
	}
	override := &config.ConfigOverride{}
	if cmd.Flags().Changed("verbose") || flags.configPath == "" {
		override.LogLvl = &flags.verbose
	}
	if flags.dir != "" {
		override.StorageDir = &flags.dir
	}
	if flags.backend != "" {
		override.Backend = &flags.backend
	}
	cfg.Merge(override)

	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")
	logger.Debug().
		Str("backend", cfg.Backend).
		Str("path", cfg.StoragePath()).
		Str("format", cfg.DocumentFormat()).
		Msg("Opening repository")

	store, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	codec, err := tree.CodecFor(cfg.DocumentFormat(), cfg.Indent)
	if err != nil {
		store.Close()
		return nil, err
	}

	repo := tree.NewRepository(store, codec)
	if repo.Fresh() {
		if err := repo.Save(); err != nil {
			logger.Warn().Err(err).Msg("Failed to save new root; its id will not survive this run")
		}
	}
	repo.Subscribe(&eventPrinter{out: cmd.OutOrStdout()})
	return repo, nil
}
