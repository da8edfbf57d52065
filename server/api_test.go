package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestEnvelopeShapes(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, 200, map[string]int{"n": 1})
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env, "data")
	assert.NotContains(t, env, "error")

	rec = httptest.NewRecorder()
	writeError(rec, 404, "not found")
	assert.Equal(t, 404, rec.Code)
	env = decodeEnvelope(t, rec)
	assert.NotContains(t, env, "data")
	assert.JSONEq(t, `"not found"`, string(env["error"]))
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"title":"x","bogus":1}`))
	err := readJSON(httptest.NewRecorder(), req, &dst)
	assert.Error(t, err)
}

func expectSession(mock sqlmock.Sqlmock, token string) {
	mock.ExpectQuery(`from sessions s join users u`).WithArgs(token).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "is_active", "created_at"}).
			AddRow(9, "ana@example.com", "Ana Petrova", "", true, time.Now()))
}

func withSession(a *api, req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: a.sessionCookieName(), Value: "tok"})
	return req
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	a, _ := newMockAPI(t)
	h := a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		writeData(w, 200, "reached")
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/api/boards", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestAddCommentRejectsReplyToReply(t *testing.T) {
	a, mock := newMockAPI(t)
	expectSession(mock, "tok")
	// parent 50 is itself a reply
	mock.ExpectQuery(`select parent_id, card_id from comments where id=\$1`).WithArgs(int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id", "card_id"}).AddRow(10, 1))

	req := withSession(a, httptest.NewRequest("POST", "/api/cards/1/comments",
		strings.NewReader(`{"body":"nested reply","parent_id":50}`)))
	req.SetPathValue("id", "1")

	rec := httptest.NewRecorder()
	a.handleAddComment(rec, req)
	assert.Equal(t, 400, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, string(env["error"]), "top-level")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentMissingParent(t *testing.T) {
	a, mock := newMockAPI(t)
	expectSession(mock, "tok")
	mock.ExpectQuery(`select parent_id, card_id from comments where id=\$1`).WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id", "card_id"}))

	req := withSession(a, httptest.NewRequest("POST", "/api/cards/1/comments",
		strings.NewReader(`{"body":"hi","parent_id":99}`)))
	req.SetPathValue("id", "1")

	rec := httptest.NewRecorder()
	a.handleAddComment(rec, req)
	assert.Equal(t, 400, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentRejectsCrossCardParent(t *testing.T) {
	a, mock := newMockAPI(t)
	expectSession(mock, "tok")
	// parent 5 is top-level but lives on card 2
	mock.ExpectQuery(`select parent_id, card_id from comments where id=\$1`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id", "card_id"}).AddRow(nil, 2))

	req := withSession(a, httptest.NewRequest("POST", "/api/cards/1/comments",
		strings.NewReader(`{"body":"wrong thread","parent_id":5}`)))
	req.SetPathValue("id", "1")

	rec := httptest.NewRecorder()
	a.handleAddComment(rec, req)
	assert.Equal(t, 400, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, string(env["error"]), "another card")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddCommentReplyWithMentions(t *testing.T) {
	a, mock := newMockAPI(t)
	now := time.Now()
	expectSession(mock, "tok")
	mock.ExpectQuery(`select parent_id, card_id from comments where id=\$1`).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"parent_id", "card_id"}).AddRow(nil, 1))
	mock.ExpectQuery(`from users where is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "is_active", "created_at"}).
			AddRow(9, "ana@example.com", "Ana Petrova", "", true, now))
	mock.ExpectQuery(`insert into comments`).
		WithArgs(int64(1), int64(5), int64(9), "thanks @Ana", []byte(`[9]`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "card_id", "parent_id", "author_id", "body", "mentions", "created_at", "updated_at"}).
			AddRow(77, 1, 5, 9, "thanks @Ana", []byte(`[9]`), now, nil))

	req := withSession(a, httptest.NewRequest("POST", "/api/cards/1/comments",
		strings.NewReader(`{"body":"thanks @Ana","parent_id":5}`)))
	req.SetPathValue("id", "1")

	rec := httptest.NewRecorder()
	a.handleAddComment(rec, req)
	require.Equal(t, 201, rec.Code)
	var env struct {
		Data Comment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, int64(77), env.Data.ID)
	require.NotNil(t, env.Data.ParentID)
	assert.Equal(t, int64(5), *env.Data.ParentID)
	assert.Equal(t, []int64{9}, env.Data.Mentions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentsByCardRendersSegments(t *testing.T) {
	a, mock := newMockAPI(t)
	now := time.Now()
	mock.ExpectQuery(`from comments where card_id=\$1`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "card_id", "parent_id", "author_id", "body", "mentions", "created_at", "updated_at"}).
			AddRow(1, 1, nil, 9, "see https://example.com/very/long/path/here thanks", []byte(`[]`), now, nil))

	req := httptest.NewRequest("GET", "/api/cards/1/comments", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	a.handleCommentsByCard(rec, req)
	require.Equal(t, 200, rec.Code)

	var env struct {
		Data []struct {
			Segments []LinkSegment `json:"segments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	require.Len(t, env.Data[0].Segments, 3)
	link := env.Data[0].Segments[1]
	assert.Equal(t, "https://example.com/very/long/path/here", link.Href)
	assert.NotEqual(t, link.Href, link.Text, "display text is shortened by default")
	assert.NoError(t, mock.ExpectationsWereMet())
}
