package cli

import (
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"recipe-desk/config"
	"recipe-desk/logger"
)

// RootCmd builds the command tree. staticFS holds the embedded UI and version
// is reported in bug-report links.
func RootCmd(staticFS fs.FS, version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "recipe-desk",
		Short:         "Saved recipes and shareable links for the recipe editor",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("log-json", false, "log as JSON")

	root.AddCommand(
		ServeCmd(staticFS, version),
		LinkCmd(),
	)
	return root
}

// loadConfig reads configuration from the environment, then applies any
// flags the user set explicitly, and initialises the default logger.
func loadConfig(cmd *cobra.Command, flagPaths map[string]string) (*config.Config, error) {
	overrides := make(map[string]any)
	paths := map[string]string{"log-level": "log.level", "log-json": "log.json"}
	for name, path := range flagPaths {
		paths[name] = path
	}
	for name, path := range paths {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		overrides[path] = f.Value.String()
	}

	cfg, err := config.Load(os.Environ(), overrides)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.JSON)
	return cfg, nil
}
