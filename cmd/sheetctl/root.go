package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/premiumcars/listingsheet/internal/client"
	"github.com/premiumcars/listingsheet/internal/logging"
)

// app is the state shared by all commands.
type app struct {
	out io.Writer
	err io.Writer

	configPath string
	server     string
	verbose    bool

	cfg    *cliConfig
	logger *slog.Logger
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, err: errOut}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "sheetctl",
		Short:         "Create, edit and export vehicle listing sheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if a.verbose {
				level = "debug"
			}
			a.logger = logging.New(a.err, level, "text")

			cfg, err := loadConfig(a.configPath)
			if err != nil {
				return err
			}
			if a.server != "" {
				cfg.Server = a.server
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.err)

	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "Config file")
	root.PersistentFlags().StringVar(&a.server, "server", "", "API base URL (overrides the config file)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newPreviewCmd(a),
	)
	return root
}

var errNotLoggedIn = errors.New("not logged in, run 'sheetctl login --token <token>' first")

// client returns an API client for the configured server and session.
func (a *app) client(requireSession bool) (*client.Client, error) {
	if requireSession && a.cfg.Session == "" {
		return nil, errNotLoggedIn
	}
	return client.New(a.cfg.Server, client.WithSession(a.cfg.Session))
}
