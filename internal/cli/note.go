package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkessel/daynote/internal/domain"
)

func newNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	cmd.AddCommand(newNoteAddCmd())
	cmd.AddCommand(newNoteListCmd())
	cmd.AddCommand(newNoteDeleteCmd())
	return cmd
}

func newNoteAddCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			content := strings.Join(args, " ")
			if title == "" {
				title = firstLine(content)
			}

			note := &domain.Note{OwnerID: a.owner(), Title: title, Content: content}
			if err := a.notes.Put(note); err != nil {
				return err
			}

			fmt.Println(note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title (default: first line of content)")
	return cmd
}

func newNoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			notes, err := a.notes.List(a.owner())
			if err != nil {
				return err
			}
			if len(notes) == 0 {
				fmt.Println("no notes")
				return nil
			}

			for _, n := range notes {
				fmt.Printf("%s  %s  %s\n", n.ID, n.UpdatedAt.Format("2006-01-02 15:04"), n.Title)
			}
			return nil
		},
	}
}

func newNoteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			return a.notes.Delete(a.owner(), args[0])
		},
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 60
	if len(s) > max {
		return s[:max]
	}
	return s
}
