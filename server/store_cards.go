package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// --- Comments ---

func scanComment(row interface{ Scan(...any) error }) (Comment, error) {
	var c Comment
	var mentions []byte
	err := row.Scan(&c.ID, &c.CardID, &c.ParentID, &c.AuthorID, &c.Body, &mentions, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	if len(mentions) > 0 {
		_ = json.Unmarshal(mentions, &c.Mentions)
	}
	return c, nil
}

func (s *Store) CommentsByCard(ctx context.Context, cardID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, parent_id, author_id, body, mentions, created_at, updated_at
		 from comments where card_id=$1 order by id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddComment inserts a comment; parentID must reference a top-level comment
// (enforced by the handler). Mentions are stored alongside the body.
func (s *Store) AddComment(ctx context.Context, cardID int64, parentID *int64, authorID *int64, body string, mentions []int64) (Comment, error) {
	if mentions == nil {
		mentions = []int64{}
	}
	mj, _ := json.Marshal(mentions)
	return scanComment(s.db.QueryRowContext(ctx,
		`insert into comments(card_id, parent_id, author_id, body, mentions) values($1,$2,$3,$4,$5)
		 returning id, card_id, parent_id, author_id, body, mentions, created_at, updated_at`,
		cardID, parentID, authorID, body, mj))
}

// CommentIsTopLevel reports whether the comment exists and has no parent,
// along with the card it belongs to so callers can reject cross-card replies.
func (s *Store) CommentIsTopLevel(ctx context.Context, id int64) (bool, int64, error) {
	var parent sql.NullInt64
	var cardID int64
	err := s.db.QueryRowContext(ctx, `select parent_id, card_id from comments where id=$1`, id).Scan(&parent, &cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, ErrNotFound
	}
	return !parent.Valid, cardID, err
}

func (s *Store) UpdateComment(ctx context.Context, id int64, body string) error {
	res, err := s.db.ExecContext(ctx, `update comments set body=$1, updated_at=now() where id=$2`, body, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from comments where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Labels ---

func (s *Store) LabelsByBoard(ctx context.Context, boardID int64) ([]Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, board_id, name, coalesce(color,'') from labels where board_id=$1 order by id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Name, &l.Color); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CreateLabel(ctx context.Context, boardID int64, name, color string) (Label, error) {
	var l Label
	err := s.db.QueryRowContext(ctx,
		`insert into labels(board_id, name, color) values($1,$2,$3) returning id, board_id, name, coalesce(color,'')`,
		boardID, name, color).
		Scan(&l.ID, &l.BoardID, &l.Name, &l.Color)
	return l, err
}

func (s *Store) LabelsByCard(ctx context.Context, cardID int64) ([]Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`select l.id, l.board_id, l.name, coalesce(l.color,'')
		 from card_labels cl join labels l on l.id=cl.label_id where cl.card_id=$1 order by l.id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Name, &l.Color); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ToggleCardLabel attaches the label when absent and detaches it when present.
func (s *Store) ToggleCardLabel(ctx context.Context, cardID, labelID int64) (attached bool, err error) {
	res, err := s.db.ExecContext(ctx, `delete from card_labels where card_id=$1 and label_id=$2`, cardID, labelID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx,
		`insert into card_labels(card_id, label_id) values($1,$2) on conflict do nothing`, cardID, labelID)
	return true, err
}

// --- Assignees ---

func (s *Store) AssigneesByCard(ctx context.Context, cardID int64) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select u.id, u.email, u.name, coalesce(u.avatar_url,''), u.is_active, u.created_at
		 from card_assignees ca join users u on u.id=ca.user_id where ca.card_id=$1 order by u.id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) AddAssignee(ctx context.Context, cardID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`insert into card_assignees(card_id, user_id) values($1,$2) on conflict do nothing`, cardID, userID)
	return err
}

func (s *Store) RemoveAssignee(ctx context.Context, cardID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `delete from card_assignees where card_id=$1 and user_id=$2`, cardID, userID)
	return err
}

// --- Attachments ---

func (s *Store) AttachmentsByCard(ctx context.Context, cardID int64) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, file_name, mime_type, size_bytes, storage_key, created_at
		 from attachments where card_id=$1 order by id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.CardID, &a.FileName, &a.MimeType, &a.SizeBytes, &a.StorageKey, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AddAttachment(ctx context.Context, cardID int64, fileName, mimeType string, sizeBytes int64, storageKey string) (Attachment, error) {
	var a Attachment
	err := s.db.QueryRowContext(ctx,
		`insert into attachments(card_id, file_name, mime_type, size_bytes, storage_key) values($1,$2,$3,$4,$5)
		 returning id, card_id, file_name, mime_type, size_bytes, storage_key, created_at`,
		cardID, fileName, mimeType, sizeBytes, storageKey).
		Scan(&a.ID, &a.CardID, &a.FileName, &a.MimeType, &a.SizeBytes, &a.StorageKey, &a.CreatedAt)
	return a, err
}

func (s *Store) AttachmentByID(ctx context.Context, id int64) (Attachment, error) {
	var a Attachment
	err := s.db.QueryRowContext(ctx,
		`select id, card_id, file_name, mime_type, size_bytes, storage_key, created_at
		 from attachments where id=$1`, id).
		Scan(&a.ID, &a.CardID, &a.FileName, &a.MimeType, &a.SizeBytes, &a.StorageKey, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attachment{}, ErrNotFound
	}
	return a, err
}

func (s *Store) AttachmentByKey(ctx context.Context, storageKey string) (Attachment, error) {
	var a Attachment
	err := s.db.QueryRowContext(ctx,
		`select id, card_id, file_name, mime_type, size_bytes, storage_key, created_at
		 from attachments where storage_key=$1`, storageKey).
		Scan(&a.ID, &a.CardID, &a.FileName, &a.MimeType, &a.SizeBytes, &a.StorageKey, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attachment{}, ErrNotFound
	}
	return a, err
}

func (s *Store) DeleteAttachment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from attachments where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Checklists ---

func (s *Store) ChecklistsByCard(ctx context.Context, cardID int64) ([]Checklist, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, title, created_at from checklists where card_id=$1 order by id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Checklist
	for rows.Next() {
		var c Checklist
		if err := rows.Scan(&c.ID, &c.CardID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := s.checklistItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *Store) checklistItems(ctx context.Context, checklistID int64) ([]ChecklistItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, checklist_id, body, done, pos, created_at from checklist_items
		 where checklist_id=$1 order by pos, id`, checklistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChecklistItem
	for rows.Next() {
		var it ChecklistItem
		if err := rows.Scan(&it.ID, &it.ChecklistID, &it.Body, &it.Done, &it.Pos, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) CreateChecklist(ctx context.Context, cardID int64, title string) (Checklist, error) {
	var c Checklist
	err := s.db.QueryRowContext(ctx,
		`insert into checklists(card_id, title) values($1,$2) returning id, card_id, title, created_at`,
		cardID, title).
		Scan(&c.ID, &c.CardID, &c.Title, &c.CreatedAt)
	return c, err
}

func (s *Store) DeleteChecklist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from checklists where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AddChecklistItem(ctx context.Context, checklistID int64, body string) (ChecklistItem, error) {
	var next int64 = 1000
	_ = s.db.QueryRowContext(ctx, `select coalesce(max(pos),0)+1000 from checklist_items where checklist_id=$1`, checklistID).Scan(&next)
	var it ChecklistItem
	err := s.db.QueryRowContext(ctx,
		`insert into checklist_items(checklist_id, body, pos) values($1,$2,$3)
		 returning id, checklist_id, body, done, pos, created_at`,
		checklistID, body, next).
		Scan(&it.ID, &it.ChecklistID, &it.Body, &it.Done, &it.Pos, &it.CreatedAt)
	return it, err
}

func (s *Store) SetChecklistItemDone(ctx context.Context, itemID int64, done bool) error {
	res, err := s.db.ExecContext(ctx, `update checklist_items set done=$1 where id=$2`, done, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteChecklistItem(ctx context.Context, itemID int64) error {
	res, err := s.db.ExecContext(ctx, `delete from checklist_items where id=$1`, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ChecklistCard(ctx context.Context, checklistID int64) (int64, error) {
	var cardID int64
	err := s.db.QueryRowContext(ctx, `select card_id from checklists where id=$1`, checklistID).Scan(&cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return cardID, err
}
