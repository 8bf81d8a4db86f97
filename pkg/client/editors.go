package client

import (
	"context"
	"errors"

	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/domain"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/optimistic"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/core/reorder"
)

// NewLinkEditor loads the owner's links into an optimistic collection.
// Moves stay inside a group; each one sends the group's full order, so
// pending requests and rollbacks are tracked per group.
func (c *Client) NewLinkEditor(ctx context.Context, opts optimistic.Options[domain.Link]) (*optimistic.Collection[domain.Link], error) {
	links, err := c.Links(ctx)
	if err != nil {
		return nil, err
	}

	opts.Scope = domain.Link.Scope
	opts.Move = func(items []domain.Link, sourceID, targetID string) (reorder.Result[domain.Link], error) {
		return reorder.MoveInScope(items, sourceID, targetID, domain.LinkOrderBase)
	}
	opts.Persist = func(ctx context.Context, r reorder.Result[domain.Link]) error {
		group, err := movedScope(r)
		if err != nil {
			return err
		}
		return c.ReorderLinks(ctx, group, r.Assignments)
	}
	return optimistic.New(links, opts), nil
}

func movedScope(r reorder.Result[domain.Link]) (string, error) {
	if len(r.Assignments) == 0 {
		return "", errors.New("empty assignment")
	}
	id := r.Assignments[0].ID
	for _, l := range r.Items {
		if l.ID == id {
			return l.Group, nil
		}
	}
	return "", errors.New("assigned link missing from result")
}

// NewGroupEditor loads the resolved group list. Persisting a move also
// creates rows for groups that only existed on links.
func (c *Client) NewGroupEditor(ctx context.Context, opts optimistic.Options[domain.GroupView]) (*optimistic.Collection[domain.GroupView], error) {
	groups, err := c.Groups(ctx)
	if err != nil {
		return nil, err
	}

	opts.Move = func(items []domain.GroupView, sourceID, targetID string) (reorder.Result[domain.GroupView], error) {
		return reorder.Move(items, sourceID, targetID, domain.GroupOrderBase)
	}
	opts.Persist = func(ctx context.Context, r reorder.Result[domain.GroupView]) error {
		items := make([]domain.GroupOrder, len(r.Assignments))
		for i, a := range r.Assignments {
			items[i] = domain.GroupOrder{Name: a.ID, Order: a.Order}
		}
		return c.ReorderGroups(ctx, items)
	}
	return optimistic.New(groups, opts), nil
}

func (c *Client) NewTimelineEditor(ctx context.Context, opts optimistic.Options[domain.TimelineEvent]) (*optimistic.Collection[domain.TimelineEvent], error) {
	events, err := c.Timeline(ctx)
	if err != nil {
		return nil, err
	}

	opts.Move = func(items []domain.TimelineEvent, sourceID, targetID string) (reorder.Result[domain.TimelineEvent], error) {
		return reorder.Move(items, sourceID, targetID, domain.TimelineOrderBase)
	}
	opts.Persist = func(ctx context.Context, r reorder.Result[domain.TimelineEvent]) error {
		return c.ReorderTimeline(ctx, r.Assignments)
	}
	return optimistic.New(events, opts), nil
}
