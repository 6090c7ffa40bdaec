package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/complytools/cacsync/internal/cac"
	"github.com/complytools/cacsync/internal/config"
	"github.com/complytools/cacsync/internal/oscal"
	"github.com/complytools/cacsync/internal/sync"
	"github.com/complytools/cacsync/internal/ui"
	"github.com/complytools/cacsync/internal/ui/tui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display or initialize the cacsync configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Action: func(_ context.Context, _ *cli.Command) error {
					if config.Exists() {
						return fmt.Errorf("config file already exists at %s", config.FilePath())
					}
					if err := config.Default().Save(); err != nil {
						return fmt.Errorf("failed to write config: %w", err)
					}
					fmt.Printf("Wrote default configuration to %s\n", config.FilePath())
					return nil
				},
			},
		},
		Action: func(_ context.Context, _ *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Printf("Config file: %s", config.FilePath())
			if !config.Exists() {
				fmt.Print(" (not present, using defaults)")
			}
			fmt.Println()
			fmt.Printf("  workspace.root: %s\n", cfg.Workspace.Root)
			fmt.Printf("  content.root: %s\n", cfg.Content.Root)
			fmt.Printf("  sync.product: %s\n", cfg.Sync.Product)
			fmt.Printf("  sync.policy_id: %s\n", cfg.Sync.PolicyID)
			fmt.Printf("  output.color: %s\n", cfg.Output.Color)
			fmt.Printf("  output.verbose: %t\n", cfg.Output.Verbose)
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize OSCAL model content back into the CaC repository",
		Description: `Fold authorized changes from OSCAL models into CaC content files,
   preserving comments and key order in the YAML they touch.

   Examples:
     cacsync sync catalog --policy-id abcd-levels -c ~/src/content
     cacsync sync profile --policy-id abcd-levels --product rhel10
     cacsync sync component-definition --product rhel10 --oscal-profile example`,
		Commands: []*cli.Command{
			syncCatalogCommand(),
			syncProfileCommand(),
			syncComponentDefinitionCommand(),
		},
	}
}

// syncFlags are the flags every sync subcommand shares.
func syncFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "OSCAL workspace root (defaults to workspace.root from config)",
		},
		&cli.StringFlag{
			Name:    "cac-content-root",
			Aliases: []string{"c"},
			Usage:   "CaC content repository root (defaults to content.root from config)",
		},
		&cli.BoolFlag{
			Name:    "review",
			Aliases: []string{"r"},
			Usage:   "Review findings interactively after the sync",
		},
	}
	return append(flags, extra...)
}

func policyIDFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "policy-id",
		Usage: "Policy id of the control file to update (e.g. abcd-levels)",
	}
}

func productFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "product",
		Aliases: []string{"p"},
		Usage:   "Product to sync (e.g. rhel10)",
	}
}

func syncCatalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Sync OSCAL catalog statement prose into control file descriptions",
		Flags: syncFlags(policyIDFlag()),
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := newSyncEnv(cmd)
			if err != nil {
				return err
			}
			policyID := env.policyID(cmd)
			if policyID == "" {
				return errors.New("a policy id is required: pass --policy-id or set sync.policy_id in the config")
			}
			return runTask(cmd, sync.NewCatalogTask(env.ws, env.store, policyID))
		},
	}
}

func syncProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Sync OSCAL profile control selections into control file levels",
		Flags: syncFlags(policyIDFlag(), productFlag()),
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := newSyncEnv(cmd)
			if err != nil {
				return err
			}
			policyID := env.policyID(cmd)
			if policyID == "" {
				return errors.New("a policy id is required: pass --policy-id or set sync.policy_id in the config")
			}
			product := env.product(cmd)
			if product == "" {
				return errors.New("a product is required: pass --product or set sync.product in the config")
			}
			return runTask(cmd, sync.NewProfileTask(env.ws, env.store, policyID, product))
		},
	}
}

func syncComponentDefinitionCommand() *cli.Command {
	return &cli.Command{
		Name:    "component-definition",
		Aliases: []string{"cd"},
		Usage:   "Sync an OSCAL component definition into profiles and control files",
		Flags: syncFlags(productFlag(), &cli.StringFlag{
			Name:  "oscal-profile",
			Usage: "Name of the OSCAL profile the component definition was authored against",
		}),
		Action: func(_ context.Context, cmd *cli.Command) error {
			env, err := newSyncEnv(cmd)
			if err != nil {
				return err
			}
			product := env.product(cmd)
			if product == "" {
				return errors.New("a product is required: pass --product or set sync.product in the config")
			}
			oscalProfile := cmd.String("oscal-profile")
			if oscalProfile == "" {
				return errors.New("an OSCAL profile name is required: pass --oscal-profile")
			}
			return runTask(cmd, sync.NewComponentDefinitionTask(env.ws, env.store, product, oscalProfile))
		},
	}
}

// syncEnv resolves the workspace and content store for one sync invocation,
// preferring flags over the config file.
type syncEnv struct {
	cfg   *config.Config
	ws    *oscal.Workspace
	store *cac.Store
}

func newSyncEnv(cmd *cli.Command) (*syncEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// Flags override the config file; both go through the same path
	// expansion so ~ and relative paths behave identically.
	if v := cmd.String("workspace"); v != "" {
		cfg.Workspace.Root = v
	}
	if v := cmd.String("cac-content-root"); v != "" {
		cfg.Content.Root = v
	}
	if cfg.Content.Root == "" {
		return nil, errors.New("a content root is required: pass --cac-content-root or set content.root in the config")
	}

	return &syncEnv{
		cfg:   cfg,
		ws:    oscal.NewWorkspace(cfg.WorkspaceRoot(baseDir)),
		store: cac.NewStore(cfg.ContentRoot(baseDir)),
	}, nil
}

func (e *syncEnv) policyID(cmd *cli.Command) string {
	if v := cmd.String("policy-id"); v != "" {
		return v
	}
	return e.cfg.Sync.PolicyID
}

func (e *syncEnv) product(cmd *cli.Command) string {
	if v := cmd.String("product"); v != "" {
		return v
	}
	return e.cfg.Sync.Product
}

// runTask executes a sync task, prints the findings, and optionally opens the
// interactive review when requested on a terminal.
func runTask(cmd *cli.Command, task sync.Task) error {
	result, err := task.Execute()
	if err != nil {
		return err
	}

	ui.PrintResult(os.Stdout, result)

	if cmd.Bool("review") && result.Changed() && term.IsTerminal(int(os.Stdout.Fd())) {
		_, err = tui.Run(tui.NewReviewListModel(result))
		return err
	}
	return nil
}
