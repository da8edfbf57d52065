package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const clientCols = `id, name, coalesce(contact_email,''), coalesce(contact_phone,''), event_date,
	coalesce(venue,''), coalesce(budget_cents,0), stage, coalesce(notes,''), created_at`

func scanClient(row interface{ Scan(...any) error }) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.ContactEmail, &c.ContactPhone, &c.EventDate,
		&c.Venue, &c.BudgetCents, &c.Stage, &c.Notes, &c.CreatedAt)
	return c, err
}

func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `select `+clientCols+` from clients order by created_at desc, id desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id int64) (Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, `select `+clientCols+` from clients where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (s *Store) CreateClient(ctx context.Context, c Client) (Client, error) {
	if c.Stage == "" {
		c.Stage = "new"
	}
	return scanClient(s.db.QueryRowContext(ctx,
		`insert into clients(name, contact_email, contact_phone, event_date, venue, budget_cents, stage, notes)
		 values($1,$2,$3,$4,$5,$6,$7,$8) returning `+clientCols,
		c.Name, c.ContactEmail, c.ContactPhone, c.EventDate, c.Venue, c.BudgetCents, c.Stage, c.Notes))
}

// ClientPatch mirrors CardPatch: nil leaves the column alone.
type ClientPatch struct {
	Name         *string    `json:"name"`
	ContactEmail *string    `json:"contact_email"`
	ContactPhone *string    `json:"contact_phone"`
	EventDate    *time.Time `json:"event_date"`
	Venue        *string    `json:"venue"`
	BudgetCents  *int64     `json:"budget_cents"`
	Stage        *string    `json:"stage"`
	Notes        *string    `json:"notes"`
}

func (s *Store) UpdateClient(ctx context.Context, id int64, p ClientPatch) error {
	set := []string{}
	args := []any{}
	idx := 1
	add := func(col string, v any) {
		set = append(set, fmt.Sprintf("%s=$%d", col, idx))
		args = append(args, v)
		idx++
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.ContactEmail != nil {
		add("contact_email", *p.ContactEmail)
	}
	if p.ContactPhone != nil {
		add("contact_phone", *p.ContactPhone)
	}
	if p.EventDate != nil {
		add("event_date", *p.EventDate)
	}
	if p.Venue != nil {
		add("venue", *p.Venue)
	}
	if p.BudgetCents != nil {
		add("budget_cents", *p.BudgetCents)
	}
	if p.Stage != nil {
		add("stage", *p.Stage)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("update clients set %s where id=$%d", joinComma(set), idx), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from clients where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
