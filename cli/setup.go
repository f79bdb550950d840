package cli

import (
	"context"
	"fmt"

	"github.com/compozy/agentfs/engine/core"
	"github.com/compozy/agentfs/pkg/config"
	"github.com/compozy/agentfs/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupCommandContext loads configuration from defaults, YAML, environment,
// and flag overrides, then attaches the config manager, logger, and a fresh
// request id to the command context.
func setupCommandContext(cmd *cobra.Command) (context.Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sources := make([]config.Source, 0, 2)
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	cliFlags, err := extractCLIFlags(cmd)
	if err != nil {
		return nil, err
	}
	if len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx = config.ContextWithManager(ctx, manager)
	ctx = logger.ContextWithLogger(ctx, newCommandLogger(cmd, cfg))
	return core.WithRequestID(ctx, core.NewRequestID()), nil
}

// flagConfigKeys maps command flags onto configuration keys.
var flagConfigKeys = map[string]string{
	"root":            "sandbox.root_dir",
	"additional-root": "sandbox.additional_roots",
	"allowed-prefix":  "sandbox.allowed_prefixes",
	"platform":        "sandbox.platform",
	"log-level":       "runtime.log_level",
	"log-json":        "runtime.log_json",
}

// extractCLIFlags collects changed command flags as configuration overrides
// so they take precedence over YAML values.
func extractCLIFlags(cmd *cobra.Command) (map[string]any, error) {
	flags := make(map[string]any)
	var visitErr error
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		key, ok := flagConfigKeys[flag.Name]
		if !ok {
			return
		}
		switch flag.Value.Type() {
		case "stringSlice":
			value, err := cmd.Flags().GetStringSlice(flag.Name)
			if err != nil {
				visitErr = fmt.Errorf("failed to get %s flag: %w", flag.Name, err)
				return
			}
			flags[key] = value
		case "bool":
			value, err := cmd.Flags().GetBool(flag.Name)
			if err != nil {
				visitErr = fmt.Errorf("failed to get %s flag: %w", flag.Name, err)
				return
			}
			flags[key] = value
		default:
			flags[key] = flag.Value.String()
		}
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return flags, nil
}

// newCommandLogger builds a logger from runtime configuration. Logs go to
// stderr so command output on stdout stays machine readable.
func newCommandLogger(cmd *cobra.Command, cfg *config.Config) logger.Logger {
	logCfg := logger.DefaultConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logCfg.Level = logger.LogLevel(cfg.Runtime.LogLevel)
	logCfg.JSON = cfg.Runtime.LogJSON
	return logger.NewLogger(logCfg)
}
