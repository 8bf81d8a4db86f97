package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/client"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/optimistic"
)

// editor is the part of an optimistic collection the move command drives
type editor interface {
	Move(sourceID, targetID string) (bool, error)
	Wait()
	Close()
}

func newMoveCmd(a *app, kind, short string) *cobra.Command {
	var server, token string

	parent := &cobra.Command{Use: kind, Short: short}
	move := &cobra.Command{
		Use:   "move <source-id> <target-id>",
		Short: "Move an item onto another item's position",
		Long: "Move an item onto another item's position. Links are addressed by id, " +
			"groups by name and timeline events by id.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = a.cfg.BaseURL
			}
			c := client.New(server, token)
			return runMove(cmd.Context(), c, kind, args[0], args[1], cmd.OutOrStdout())
		},
	}
	move.Flags().StringVar(&server, "server", "", "API base URL (default BASE_URL)")
	move.Flags().StringVar(&token, "token", "", "session token")
	_ = move.MarkFlagRequired("token")

	parent.AddCommand(move)
	return parent
}

func runMove(ctx context.Context, c *client.Client, kind, source, target string, out io.Writer) error {
	var failure error
	onFailure := func(n optimistic.Notice) { failure = n.Err }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var (
		ed   editor
		show func()
		err  error
	)
	switch kind {
	case "links":
		var col *optimistic.Collection[domain.Link]
		col, err = c.NewLinkEditor(ctx, optimistic.Options[domain.Link]{OnFailure: onFailure, Logger: logger})
		ed, show = col, func() {
			for _, l := range col.Items() {
				fmt.Fprintf(out, "%3d  %-12s %s  %s\n", l.Order, l.Group, l.ID, l.Title)
			}
		}
	case "groups":
		var col *optimistic.Collection[domain.GroupView]
		col, err = c.NewGroupEditor(ctx, optimistic.Options[domain.GroupView]{OnFailure: onFailure, Logger: logger})
		ed, show = col, func() {
			for _, g := range col.Items() {
				fmt.Fprintf(out, "%3d  %s (%d links)\n", g.Order, g.Name, g.LinkCount)
			}
		}
	case "timeline":
		var col *optimistic.Collection[domain.TimelineEvent]
		col, err = c.NewTimelineEditor(ctx, optimistic.Options[domain.TimelineEvent]{OnFailure: onFailure, Logger: logger})
		ed, show = col, func() {
			for _, e := range col.Items() {
				fmt.Fprintf(out, "%3d  %d  %s  %s\n", e.Order, e.Year, e.ID, e.Title)
			}
		}
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
	if err != nil {
		return err
	}
	defer ed.Close()

	moved, err := ed.Move(source, target)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(out, "Nothing to move")
		return nil
	}
	ed.Wait()

	if failure != nil {
		return errors.Join(errors.New("move rolled back"), failure)
	}
	show()
	return nil
}
