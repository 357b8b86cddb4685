package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	cerrors "github.com/DeBrosOfficial/contacts/pkg/errors"
	"github.com/DeBrosOfficial/contacts/pkg/record"
)

// hiddenFields are not repeated in the FIELDS column.
var hiddenFields = map[string]bool{
	record.FieldID:      true,
	record.FieldCreated: true,
	record.FieldUpdated: true,
	"name":              true,
	"collectionId":      true,
	"collectionName":    true,
}

func newListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contacts, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			items, err := a.service.ListContacts(cmd.Context())
			if err != nil {
				return cerrors.Wrap(err, "failed to list contacts")
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				printf(out, "No contacts found\n")
				return nil
			}
			printf(out, "%s\n", renderContacts(items))
			printf(out, "\nTotal: %d\n", len(items))
			return nil
		}),
	}
}

func newCreateCommand(opts *globalOptions) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:     "create --field name=Bob [--field key=value...]",
		Short:   "Create a contact",
		Example: "  contacts create --field name=Bob --field phone=555-0100",
		Args:    cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			body, err := parseFields(fields)
			if err != nil {
				return err
			}
			rec, err := a.service.CreateContact(cmd.Context(), body)
			if err != nil {
				return cerrors.Wrap(err, "failed to create contact")
			}
			printRecord(cmd.OutOrStdout(), "✅ Contact created", rec)
			return nil
		}),
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field as key=value (repeatable)")
	return cmd
}

func newUpdateCommand(opts *globalOptions) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "update <id> --field key=value...",
		Short: "Update fields of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			body, err := parseFields(fields)
			if err != nil {
				return err
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update: pass at least one --field")
			}
			rec, err := a.service.UpdateContact(cmd.Context(), args[0], body)
			if err != nil {
				return cerrors.Wrapf(err, "failed to update contact %s", args[0])
			}
			printRecord(cmd.OutOrStdout(), "✅ Contact updated", rec)
			return nil
		}),
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Field as key=value (repeatable)")
	return cmd
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.service.DeleteContact(cmd.Context(), args[0]); err != nil {
				return cerrors.Wrapf(err, "failed to delete contact %s", args[0])
			}
			printf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("✅ Contact deleted:"), args[0])
			return nil
		}),
	}
}

// parseFields turns repeated key=value flags into a record body. Values are
// kept as strings; an empty value clears the field.
func parseFields(raw []string) (map[string]any, error) {
	body := make(map[string]any, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: expected key=value", kv)
		}
		body[key] = value
	}
	return body, nil
}

func printRecord(w io.Writer, title string, rec record.Record) {
	printf(w, "%s\n", successStyle.Render(title))
	printf(w, "%s %s\n", labelStyle.Render("ID:     "), rec.ID())
	if name := rec.String("name"); name != "" {
		printf(w, "%s %s\n", labelStyle.Render("Name:   "), name)
	}
	if extra := extraFields(rec); extra != "" {
		printf(w, "%s %s\n", labelStyle.Render("Fields: "), extra)
	}
	if created := rec.Created(); !created.IsZero() {
		printf(w, "%s %s\n", labelStyle.Render("Created:"), created.Local().Format("2006-01-02 15:04:05"))
	}
}

func renderContacts(items []record.Record) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("ID", "NAME", "FIELDS", "CREATED")

	for _, rec := range items {
		created := ""
		if ts := rec.Created(); !ts.IsZero() {
			created = ts.Local().Format("2006-01-02 15:04")
		}
		t.Row(rec.ID(), rec.String("name"), extraFields(rec), created)
	}
	return titleStyle.Render("Contacts") + "\n" + t.String()
}

// extraFields renders the non-system fields of rec as sorted key=value pairs.
func extraFields(rec record.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if !hiddenFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := rec[k]
		if v == nil || v == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}
