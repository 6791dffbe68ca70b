package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warden/internal/agent/ports"
	"warden/internal/config"
	"warden/internal/guard"
	"warden/internal/ignore"
	"warden/internal/observability"
	"warden/internal/pathutil"
	"warden/internal/toolregistry"
	"warden/internal/tools/builtin"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type appFlags struct {
	configPath string
	root       string
	workingDir string
}

func newRootCmd() *cobra.Command {
	flags := &appFlags{}

	cmd := &cobra.Command{
		Use:           "warden",
		Short:         "Mediates file tool calls behind a sandbox root and .ignore policy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (yaml)")
	cmd.PersistentFlags().StringVar(&flags.root, "root", "", "sandbox root directory (overrides config)")
	cmd.PersistentFlags().StringVar(&flags.workingDir, "workdir", "", "working directory for relative paths (overrides config)")

	cmd.AddCommand(newCheckCmd(flags))
	cmd.AddCommand(newToolsCmd(flags))
	cmd.AddCommand(newCallCmd(flags))
	return cmd
}

// app bundles the wired components behind the CLI commands.
type app struct {
	cfg      config.Config
	paths    *pathutil.Resolver
	ignore   *ignore.Resolver
	guard    *guard.Guard
	registry *toolregistry.Registry
	log      *observability.Logger
}

func buildApp(flags *appFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.root != "" {
		cfg.Workspace.Root = flags.root
	}
	if flags.workingDir != "" {
		cfg.Workspace.WorkingDir = flags.workingDir
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	paths := pathutil.NewResolver(cfg.Workspace.WorkingDir, cfg.Workspace.Root)
	ignoreResolver := ignore.NewResolver()
	g := guard.New(paths, ignoreResolver, logger)

	cacheCfg := toolregistry.DefaultCacheConfig()
	cacheCfg.MaxSize = cfg.Cache.MaxSize
	cacheCfg.TTL = cfg.Cache.TTL

	registry := toolregistry.NewRegistry()
	register := func(tool toolWithGroups) error {
		guarded := g.Wrap(tool.executor, tool.groups...)
		return registry.Register(toolregistry.NewCacheExecutor(guarded, cacheCfg))
	}
	for _, tool := range builtinTools(cfg) {
		if err := register(tool); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:      cfg,
		paths:    paths,
		ignore:   ignoreResolver,
		guard:    g,
		registry: registry,
		log:      logger,
	}, nil
}

type toolWithGroups struct {
	executor ports.ToolExecutor
	groups   []guard.RequiredParamGroup
}

func builtinTools(cfg config.Config) []toolWithGroups {
	pathGroup := guard.RequiredParamGroup{Label: "path", Keys: []string{"path", "file_path"}}
	return []toolWithGroups{
		{
			executor: builtin.NewFileRead(cfg.Workspace.MaxReadBytes),
			groups:   []guard.RequiredParamGroup{pathGroup},
		},
		{
			executor: builtin.NewFileWrite(),
			groups: []guard.RequiredParamGroup{
				pathGroup,
				{Label: "content", Keys: []string{"content"}, AllowEmpty: true},
			},
		},
		{
			executor: builtin.NewFileEdit(),
			groups: []guard.RequiredParamGroup{
				pathGroup,
				{Label: "old_string", Keys: []string{"old_string", "old_str"}, AllowEmpty: true},
				{Label: "new_string", Keys: []string{"new_string", "new_str"}, AllowEmpty: true},
			},
		},
	}
}
