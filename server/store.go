package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict marks one-shot transitions attempted twice (override, run decision).
	ErrConflict = errors.New("conflict")
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// --- Boards ---

func (s *Store) ListBoards(ctx context.Context) ([]Board, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, title, type, coalesce(color,'') as color, created_at from boards order by pos, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Title, &b.Type, &b.Color, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) CreateBoard(ctx context.Context, userID int64, title, boardType string) (Board, error) {
	var next int64 = 1000
	_ = s.db.QueryRowContext(ctx, `select coalesce(max(pos),0)+1000 from boards`).Scan(&next)
	var b Board
	err := s.db.QueryRowContext(ctx,
		`insert into boards(title, type, pos, created_by) values($1,$2,$3,$4)
		 returning id, title, type, coalesce(color,''), created_at`,
		title, boardType, next, userID).
		Scan(&b.ID, &b.Title, &b.Type, &b.Color, &b.CreatedAt)
	return b, err
}

func (s *Store) GetBoard(ctx context.Context, id int64) (Board, error) {
	var b Board
	err := s.db.QueryRowContext(ctx,
		`select id, title, type, coalesce(color,''), created_at from boards where id=$1`, id).
		Scan(&b.ID, &b.Title, &b.Type, &b.Color, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Board{}, ErrNotFound
	}
	return b, err
}

func (s *Store) UpdateBoard(ctx context.Context, id int64, title, boardType *string) error {
	set := []string{}
	args := []any{}
	idx := 1
	if title != nil {
		set = append(set, fmt.Sprintf("title=$%d", idx))
		args = append(args, *title)
		idx++
	}
	if boardType != nil {
		set = append(set, fmt.Sprintf("type=$%d", idx))
		args = append(args, *boardType)
		idx++
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("update boards set %s where id=$%d", joinComma(set), idx), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteBoard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from boards where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Lists ---

func (s *Store) ListsByBoard(ctx context.Context, boardID int64) ([]List, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, board_id, title, pos, created_at from lists where board_id=$1 order by pos, id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []List
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.Pos, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CreateList(ctx context.Context, boardID int64, title string) (List, error) {
	var next int64 = 1000
	_ = s.db.QueryRowContext(ctx, `select coalesce(max(pos),0)+1000 from lists where board_id=$1`, boardID).Scan(&next)
	var l List
	err := s.db.QueryRowContext(ctx,
		`insert into lists(board_id, title, pos) values($1,$2,$3) returning id, board_id, title, pos, created_at`,
		boardID, title, next).
		Scan(&l.ID, &l.BoardID, &l.Title, &l.Pos, &l.CreatedAt)
	return l, err
}

func (s *Store) UpdateList(ctx context.Context, id int64, title *string, pos *int64) error {
	if title == nil && pos == nil {
		return nil
	}
	set := []string{}
	args := []any{}
	idx := 1
	if title != nil {
		set = append(set, fmt.Sprintf("title=$%d", idx))
		args = append(args, *title)
		idx++
	}
	if pos != nil {
		set = append(set, fmt.Sprintf("pos=$%d", idx))
		args = append(args, *pos)
		idx++
	}
	args = append(args, id)
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("update lists set %s where id=$%d", joinComma(set), idx), args...)
	return err
}

func (s *Store) DeleteList(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from lists where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) BoardIDByList(ctx context.Context, listID int64) (int64, error) {
	var boardID int64
	err := s.db.QueryRowContext(ctx, `select board_id from lists where id=$1`, listID).Scan(&boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return boardID, err
}

// --- Cards ---

const cardCols = `id, list_id, title, description, coalesce(brief,''), coalesce(priority,''), coalesce(size,''),
	pos, start_at, due_at, coalesce(cover_key,''), coalesce(approval_status,''), client_id, created_at`

func scanCard(row interface{ Scan(...any) error }) (Card, error) {
	var c Card
	err := row.Scan(&c.ID, &c.ListID, &c.Title, &c.Description, &c.Brief, &c.Priority, &c.Size,
		&c.Pos, &c.StartAt, &c.DueAt, &c.CoverKey, &c.ApprovalStatus, &c.ClientID, &c.CreatedAt)
	return c, err
}

func (s *Store) CardsByList(ctx context.Context, listID int64) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+cardCols+` from cards where list_id=$1 order by pos, id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCard(ctx context.Context, listID int64, title, description string) (Card, error) {
	var next int64 = 1000
	_ = s.db.QueryRowContext(ctx, `select coalesce(max(pos),0)+1000 from cards where list_id=$1`, listID).Scan(&next)
	return scanCard(s.db.QueryRowContext(ctx,
		`insert into cards(list_id, title, description, pos) values($1,$2,$3,$4) returning `+cardCols,
		listID, title, description, next))
}

func (s *Store) GetCard(ctx context.Context, id int64) (Card, error) {
	c, err := scanCard(s.db.QueryRowContext(ctx, `select `+cardCols+` from cards where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, ErrNotFound
	}
	return c, err
}

// CardPatch carries the partial-update contract: nil means "leave alone".
type CardPatch struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Brief          *string    `json:"brief"`
	Priority       *string    `json:"priority"`
	Size           *string    `json:"size"`
	Pos            *int64     `json:"pos"`
	StartAt        *time.Time `json:"start_at"`
	DueAt          *time.Time `json:"due_at"`
	CoverKey       *string    `json:"cover_key"`
	ApprovalStatus *string    `json:"approval_status"`
	ClientID       *int64     `json:"client_id"`
}

func (s *Store) UpdateCard(ctx context.Context, id int64, p CardPatch) error {
	set := []string{}
	args := []any{}
	idx := 1
	add := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, v)
		idx++
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Brief != nil {
		add("brief", *p.Brief)
	}
	if p.Priority != nil {
		add("priority", *p.Priority)
	}
	if p.Size != nil {
		add("size", *p.Size)
	}
	if p.Pos != nil {
		add("pos", *p.Pos)
	}
	if p.StartAt != nil {
		add("start_at", *p.StartAt)
	}
	if p.DueAt != nil {
		add("due_at", *p.DueAt)
	}
	if p.CoverKey != nil {
		add("cover_key", *p.CoverKey)
	}
	if p.ApprovalStatus != nil {
		add("approval_status", *p.ApprovalStatus)
	}
	if p.ClientID != nil {
		add("client_id", *p.ClientID)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("update cards set %s where id=$%d", joinComma(set), idx), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from cards where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) BoardAndListByCard(ctx context.Context, cardID int64) (int64, int64, error) {
	var boardID, listID int64
	err := s.db.QueryRowContext(ctx,
		`select l.board_id, c.list_id from cards c join lists l on l.id=c.list_id where c.id=$1`, cardID).
		Scan(&boardID, &listID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	return boardID, listID, err
}

// MoveCard reorders a card within a list or across lists using fractional
// positions; when the gap closes it renumbers and retries once.
func (s *Store) MoveCard(ctx context.Context, cardID int64, targetList int64, newIndex int) error {
	attempts := 0
retry:
	var listID int64
	var pos int64
	if err := s.db.QueryRowContext(ctx, `select list_id, pos from cards where id=$1`, cardID).Scan(&listID, &pos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if targetList != 0 && targetList != listID {
		if _, err = tx.ExecContext(ctx, `update cards set list_id=$1 where id=$2`, targetList, cardID); err != nil {
			_ = tx.Rollback()
			return err
		}
		listID = targetList
	}

	rows, err := tx.QueryContext(ctx,
		`select pos from cards where list_id=$1 and id<>$2 order by pos, id`, listID, cardID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer rows.Close()
	var positions []int64
	for rows.Next() {
		var p int64
		if err = rows.Scan(&p); err != nil {
			_ = tx.Rollback()
			return err
		}
		positions = append(positions, p)
	}
	if err = rows.Err(); err != nil {
		_ = tx.Rollback()
		return err
	}

	newPos, renumber := placeAt(positions, newIndex)
	if renumber {
		if err = renumberCardPositions(ctx, tx, listID); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err = tx.Commit(); err != nil {
			return err
		}
		attempts++
		if attempts < 2 {
			goto retry
		}
		return errors.New("move failed after renumber")
	}

	if _, err = tx.ExecContext(ctx, `update cards set pos=$1 where id=$2`, newPos, cardID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// placeAt computes the fractional position for inserting at newIndex among
// the existing positions; renumber is true when the surrounding gap closed.
func placeAt(positions []int64, newIndex int) (newPos int64, renumber bool) {
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(positions) {
		newIndex = len(positions)
	}
	var beforePos, afterPos *int64
	if newIndex > 0 {
		v := positions[newIndex-1]
		beforePos = &v
	}
	if newIndex < len(positions) {
		v := positions[newIndex]
		afterPos = &v
	}
	switch {
	case beforePos == nil && afterPos == nil:
		return 1000, false
	case beforePos != nil && afterPos == nil:
		return *beforePos + 1000, false
	case beforePos == nil && afterPos != nil:
		p := *afterPos - 500
		if p <= 0 {
			p = 1
		}
		return p, false
	default:
		gap := *afterPos - *beforePos
		if gap <= 1 {
			return 0, true
		}
		return *beforePos + gap/2, false
	}
}

func renumberCardPositions(ctx context.Context, tx *sql.Tx, listID int64) error {
	rows, err := tx.QueryContext(ctx, `select id from cards where list_id=$1 order by pos, id`, listID)
	if err != nil {
		return err
	}
	defer rows.Close()
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	pos := int64(1000)
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `update cards set pos=$1 where id=$2`, pos, id); err != nil {
			return err
		}
		pos += 1000
	}
	return nil
}

func joinComma(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += ", " + parts[i]
	}
	return out
}
