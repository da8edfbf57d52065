package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// loadCardAggregate builds the one-fetch payload behind the card detail
// view: card, labels, assignees, comment threads, board/list names, visible
// tabs, and a signed cover URL. Sub-reads run concurrently; each field of
// the result is independently absent-safe. A missing card is ErrNotFound,
// distinct from transport errors.
func (a *api) loadCardAggregate(ctx context.Context, cardID int64) (CardAggregate, error) {
	card, err := a.store.GetCard(ctx, cardID)
	if err != nil {
		return CardAggregate{}, err
	}

	agg := CardAggregate{Card: &card}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		labels, err := a.store.LabelsByCard(gctx, cardID)
		if err != nil {
			return err
		}
		agg.Labels = labels
		return nil
	})
	g.Go(func() error {
		assignees, err := a.store.AssigneesByCard(gctx, cardID)
		if err != nil {
			return err
		}
		agg.Assignees = assignees
		return nil
	})
	g.Go(func() error {
		comments, err := a.store.CommentsByCard(gctx, cardID)
		if err != nil {
			return err
		}
		agg.Comments = GroupComments(comments)
		return nil
	})
	g.Go(func() error {
		boardID, listID, err := a.store.BoardAndListByCard(gctx, cardID)
		if err != nil {
			// card deleted between reads: leave names absent
			if err == ErrNotFound {
				return nil
			}
			return err
		}
		agg.BoardID = boardID
		board, err := a.store.GetBoard(gctx, boardID)
		if err == nil {
			agg.BoardName = board.Title
			agg.BoardType = board.Type
		} else if err != ErrNotFound {
			return err
		}
		lists, err := a.store.ListsByBoard(gctx, boardID)
		if err != nil {
			return err
		}
		for _, l := range lists {
			if l.ID == listID {
				agg.ListName = l.Title
				break
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return CardAggregate{}, err
	}

	agg.CoverURL = a.covers.Get(card.CoverKey)
	agg.Tabs = VisibleTabs(agg.BoardType, card.ClientID != nil)
	return agg, nil
}
