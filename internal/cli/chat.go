package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkessel/daynote/internal/chat"
	"github.com/mkessel/daynote/internal/domain"
)

func newChatCmd() *cobra.Command {
	var (
		model     string
		sessionID string
		date      string
		noteIDs   []string
	)

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a chat message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := domain.WithIdentity(cmd.Context(), domain.Identity{Subject: a.owner()})

			result, err := a.runner.Generate(ctx, chat.GenerateRequest{
				SessionID: sessionID,
				Date:      date,
				Model:     model,
				Text:      strings.Join(args, " "),
				NoteIDs:   noteIDs,
			})
			if err != nil {
				return err
			}

			fmt.Println(result.Reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "backend to use (claude, grok)")
	cmd.Flags().StringVar(&sessionID, "session", "", "target an existing session by ID")
	cmd.Flags().StringVar(&date, "date", "", "target the session for a date (YYYY-MM-DD, default today)")
	cmd.Flags().StringSliceVar(&noteIDs, "note", nil, "note IDs to include as context (repeatable)")

	return cmd
}
