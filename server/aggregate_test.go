package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAPI(t *testing.T) (*api, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	a := &api{
		store:  NewStore(db),
		log:    slog.Default(),
		bus:    NewEventBus(),
		covers: NewCoverURLCache(NewSigner("test")),
	}
	return a, mock
}

func expectAggregateReads(mock sqlmock.Sqlmock, now time.Time) {
	cardRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "list_id", "title", "description", "brief", "priority", "size",
			"pos", "start_at", "due_at", "cover_key", "approval_status", "client_id", "created_at",
		}).AddRow(1, 10, "Landing page", "desc", "", "high", "m", 1000, nil, nil, "covers/1.png", "", 77, now)
	}
	mock.ExpectQuery(`from cards where id=\$1`).WithArgs(int64(1)).WillReturnRows(cardRows())
	mock.ExpectQuery(`from card_labels cl join labels l`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "name", "color"}).AddRow(3, 5, "urgent", "#f00"))
	mock.ExpectQuery(`from card_assignees ca join users u`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "is_active", "created_at"}).
			AddRow(9, "ana@example.com", "Ana Petrova", "", true, now))
	mock.ExpectQuery(`from comments where card_id=\$1`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "card_id", "parent_id", "author_id", "body", "mentions", "created_at", "updated_at"}).
			AddRow(100, 1, nil, 9, "top", []byte(`[]`), now, nil).
			AddRow(101, 1, 100, 9, "reply", []byte(`[9]`), now.Add(time.Minute), nil))
	mock.ExpectQuery(`select l.board_id, c.list_id from cards c`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"board_id", "list_id"}).AddRow(5, 10))
	mock.ExpectQuery(`from boards where id=\$1`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "type", "color", "created_at"}).
			AddRow(5, "Design Board", "design", "", now))
	mock.ExpectQuery(`from lists where board_id=\$1`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "board_id", "title", "pos", "created_at"}).
			AddRow(10, 5, "In progress", 1000, now))
}

func TestLoadCardAggregate(t *testing.T) {
	a, mock := newMockAPI(t)
	mock.MatchExpectationsInOrder(false)
	now := time.Now()
	expectAggregateReads(mock, now)

	agg, err := a.loadCardAggregate(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, agg.Card)
	assert.Equal(t, "Landing page", agg.Card.Title)
	assert.Equal(t, int64(5), agg.BoardID)
	assert.Equal(t, "Design Board", agg.BoardName)
	assert.Equal(t, "design", agg.BoardType)
	assert.Equal(t, "In progress", agg.ListName)
	require.Len(t, agg.Labels, 1)
	require.Len(t, agg.Assignees, 1)

	require.Len(t, agg.Comments, 1)
	assert.Equal(t, int64(100), agg.Comments[0].ID)
	require.Len(t, agg.Comments[0].Replies, 1)
	assert.Equal(t, []int64{9}, agg.Comments[0].Replies[0].Mentions)

	assert.NotEmpty(t, agg.CoverURL)
	assert.Contains(t, agg.Tabs, TabReview)
	assert.Contains(t, agg.Tabs, TabLeads, "linked client exposes the leads tab")
	assert.NotContains(t, agg.Tabs, TabQA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Loading the same card twice yields the same payload; the second load must
// not depend on state the first one left behind.
func TestLoadCardAggregateRepeatable(t *testing.T) {
	a, mock := newMockAPI(t)
	mock.MatchExpectationsInOrder(false)
	now := time.Unix(1700000000, 0)
	expectAggregateReads(mock, now)
	expectAggregateReads(mock, now)

	first, err := a.loadCardAggregate(context.Background(), 1)
	require.NoError(t, err)
	second, err := a.loadCardAggregate(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The aggregate endpoint echoes the client's current tab resolved against the
// visible set: a tab the board doesn't show falls back to details.
func TestCardAggregateResolvesActiveTab(t *testing.T) {
	a, mock := newMockAPI(t)
	mock.MatchExpectationsInOrder(false)
	now := time.Now()
	expectAggregateReads(mock, now)
	expectAggregateReads(mock, now)

	get := func(query string) CardAggregate {
		req := httptest.NewRequest("GET", "/api/cards/1/aggregate"+query, nil)
		req.SetPathValue("id", "1")
		rec := httptest.NewRecorder()
		a.handleCardAggregate(rec, req)
		require.Equal(t, 200, rec.Code)
		var env struct {
			Data CardAggregate `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return env.Data
	}

	// qa is never visible on a design board
	assert.Equal(t, TabDetails, get("?active=qa").ActiveTab)
	assert.Equal(t, TabReview, get("?active=review").ActiveTab)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCardAggregateBoardMismatch(t *testing.T) {
	a, mock := newMockAPI(t)
	mock.MatchExpectationsInOrder(false)
	expectAggregateReads(mock, time.Now())

	// the card belongs to board 5, not 6
	req := httptest.NewRequest("GET", "/api/cards/1/aggregate?board=6", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	a.handleCardAggregate(rec, req)
	assert.Equal(t, 404, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCardAggregateMissingCard(t *testing.T) {
	a, mock := newMockAPI(t)
	mock.ExpectQuery(`from cards where id=\$1`).WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := a.loadCardAggregate(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
