// Package cli implements the contacts command line: session management and
// contact CRUD through the contacts facade, plus a local dev server.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DeBrosOfficial/contacts/pkg/auth"
	"github.com/DeBrosOfficial/contacts/pkg/client"
	"github.com/DeBrosOfficial/contacts/pkg/config"
	"github.com/DeBrosOfficial/contacts/pkg/contacts"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configPath string
	endpoint   string
	quiet      bool
	verbose    bool
}

// app is what a command works with once the config is resolved
type app struct {
	cfg     *config.Config
	logger  *logging.ColoredLogger
	store   *auth.Store
	remote  *client.Client
	service *contacts.Service
}

func (a *app) Close() {
	a.service.Close()
	_ = a.logger.Sync()
}

// NewRootCommand builds the contacts command tree. version is printed by
// the version command.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "contacts",
		Short:         "Manage contacts stored in a hosted collection service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default ~/.contacts/config.yaml)")
	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "Service endpoint, overrides config and environment")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print stack traces for failed commands")

	root.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newListCommand(opts),
		newCreateCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newDevServerCommand(),
		newVersionCommand(version),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(version string) {
	root := NewRootCommand(version)
	if err := root.Execute(); err != nil {
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		renderError(os.Stderr, err, verbose)
		os.Exit(1)
	}
}

// loadConfig resolves the effective config: file, then environment, then flags.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultPath("config.yaml")
		if err == nil {
			path = p
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.endpoint != "" {
		cfg.Endpoint = o.endpoint
	}
	if o.quiet {
		cfg.Logging.Quiet = true
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errs[0])
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logging.ColoredLogger, error) {
	if cfg.Logging.Quiet {
		return logging.NewQuietLogger(), nil
	}
	return logging.NewColoredLogger(logging.ComponentCLI, cfg.Logging.Colors)
}

// connect wires the process-wide remote client and the facade on top of it.
func (o *globalOptions) connect() (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	storeOpts := []auth.Option{auth.WithLogger(logger)}
	if cfg.CredentialsPath != "" {
		storeOpts = append(storeOpts, auth.WithPersister(&auth.FilePersister{
			Path:     cfg.CredentialsPath,
			Endpoint: cfg.Endpoint,
		}))
	}
	store, err := auth.NewStore(storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	clientCfg := client.DefaultClientConfig(cfg.Endpoint)
	clientCfg.Timeout = cfg.RequestTimeout
	clientCfg.Logger = logger
	remote, err := client.NewClient(clientCfg, store)
	if err != nil {
		return nil, err
	}

	service := contacts.New(remote, store, contacts.Config{
		AuthCollection:     cfg.AuthCollection,
		ContactsCollection: cfg.ContactsCollection,
		Logger:             logger,
	})

	return &app{cfg: cfg, logger: logger, store: store, remote: remote, service: service}, nil
}

// withApp adapts a command body that needs a connected app to cobra's RunE.
func withApp(opts *globalOptions, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := opts.connect()
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, a, args)
	}
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contacts %s\n", version)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
