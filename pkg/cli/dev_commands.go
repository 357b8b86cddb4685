package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DeBrosOfficial/contacts/pkg/devserver"
	"github.com/DeBrosOfficial/contacts/pkg/logging"
)

func newDevServerCommand() *cobra.Command {
	var (
		addr  string
		users []string
	)

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory collection service for local development",
		Long: "Run an in-memory service speaking the same API as the hosted one. " +
			"Point the client at it with --endpoint http://<addr>. Nothing is persisted.",
		Example: "  contacts devserver --addr 127.0.0.1:8090 --user a@x.com:secret",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewColoredLogger(logging.ComponentDevServer, true)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			cfg := devserver.DefaultConfig()
			cfg.Logger = logger
			srv := devserver.New(cfg)

			for _, u := range users {
				email, password, ok := strings.Cut(u, ":")
				if !ok {
					return fmt.Errorf("invalid --user %q: expected email:password", u)
				}
				if _, err := srv.AddUser(email, password, nil); err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("Seeded user:"), email)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			printf(cmd.OutOrStdout(), "%s http://%s\n", successStyle.Render("🚀 Dev server listening on"), addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8090", "Listen address")
	cmd.Flags().StringArrayVar(&users, "user", nil, "Seed a user as email:password (repeatable)")
	return cmd
}
