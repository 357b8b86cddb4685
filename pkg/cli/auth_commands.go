package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	cerrors "github.com/DeBrosOfficial/contacts/pkg/errors"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

func newLoginCommand(opts *globalOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and store the session",
		Long:  "Authenticate with email and password. Without --password the password is read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if password == "" {
				pw, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = pw
			}

			if err := a.service.Login(cmd.Context(), args[0], password); err != nil {
				return cerrors.Wrap(err, "authentication failed")
			}

			out := cmd.OutOrStdout()
			printf(out, "%s\n", successStyle.Render("✅ Authentication successful!"))
			printSession(out, a.service.Session().Get())
			printCredentialsResult(out, a.cfg.CredentialsPath, a.store.PersistError())
			return nil
		}),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func newLogoutCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			a.service.Logout()
			printf(cmd.OutOrStdout(), "%s\n", successStyle.Render("✅ Logged out"))
			return nil
		}),
	}
}

func newWhoamiCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			current := a.service.Session().Get()
			if current == nil {
				return errors.New("not authenticated - run 'contacts login <email>' to authenticate")
			}
			out := cmd.OutOrStdout()
			printf(out, "%s\n", successStyle.Render("✅ Authenticated"))
			printf(out, "%s %s\n", labelStyle.Render("Endpoint:"), a.cfg.Endpoint)
			printSession(out, current)
			return nil
		}),
	}
}

// printCredentialsResult reports where the session was written, or why it was
// not. The session is usable for this process either way.
func printCredentialsResult(w io.Writer, path string, persistErr error) {
	if path == "" {
		return
	}
	if persistErr != nil {
		printf(w, "%s %v\n", warnStyle.Render("⚠️  Credentials not saved:"), persistErr)
		printf(w, "%s\n", labelStyle.Render("The session only lasts for this command; check "+path))
		return
	}
	printf(w, "%s %s\n", labelStyle.Render("Credentials saved to:"), path)
}

func printSession(w io.Writer, model record.Record) {
	if model == nil {
		return
	}
	printf(w, "%s %s\n", labelStyle.Render("User ID:"), model.ID())
	if email := model.String("email"); email != "" {
		printf(w, "%s %s\n", labelStyle.Render("Email:"), email)
	}
	if name := model.String("name"); name != "" {
		printf(w, "%s %s\n", labelStyle.Render("Name:"), name)
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
