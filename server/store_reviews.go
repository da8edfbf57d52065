package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

func scanOverride(verdict, reason sql.NullString, at sql.NullTime) *Override {
	if !verdict.Valid {
		return nil
	}
	return &Override{Verdict: verdict.String, Reason: reason.String, CreatedAt: at.Time}
}

// --- Review results ---

func (s *Store) AddReviewResult(ctx context.Context, r ReviewResult) (ReviewResult, error) {
	if r.ChangeRequests == nil {
		r.ChangeRequests = []string{}
	}
	cj, _ := json.Marshal(r.ChangeRequests)
	err := s.db.QueryRowContext(ctx,
		`insert into review_results(card_id, run_id, image_key, compare_key, verdict, change_requests)
		 values($1,$2,$3,nullif($4,''),$5,$6) returning id, created_at`,
		r.CardID, r.RunID, r.ImageKey, r.CompareKey, r.Verdict, cj).
		Scan(&r.ID, &r.CreatedAt)
	return r, err
}

// ReviewResultsByCard returns runs newest-first; "latest" is the head.
func (s *Store) ReviewResultsByCard(ctx context.Context, cardID int64) ([]ReviewResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, run_id, image_key, coalesce(compare_key,''), verdict, change_requests,
		        override_verdict, override_reason, overridden_at, created_at
		 from review_results where card_id=$1 order by created_at desc, id desc`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReviewResult
	for rows.Next() {
		var r ReviewResult
		var crs []byte
		var ov, or sql.NullString
		var oat sql.NullTime
		if err := rows.Scan(&r.ID, &r.CardID, &r.RunID, &r.ImageKey, &r.CompareKey, &r.Verdict, &crs,
			&ov, &or, &oat, &r.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(crs, &r.ChangeRequests)
		r.Override = scanOverride(ov, or, oat)
		out = append(out, r)
	}
	return out, rows.Err()
}

// OverrideReviewResult applies the one-shot override; a second attempt
// returns ErrConflict.
func (s *Store) OverrideReviewResult(ctx context.Context, id int64, verdict, reason string) error {
	return s.applyOverride(ctx, "review_results", id, verdict, reason)
}

func (s *Store) OverrideQAResult(ctx context.Context, id int64, verdict, reason string) error {
	return s.applyOverride(ctx, "qa_results", id, verdict, reason)
}

func (s *Store) applyOverride(ctx context.Context, table string, id int64, verdict, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`update `+table+` set override_verdict=$1, override_reason=$2, overridden_at=$3
		 where id=$4 and override_verdict is null`, verdict, reason, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish missing row from already-overridden row
		var exists bool
		if err := s.db.QueryRowContext(ctx, `select exists(select 1 from `+table+` where id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// --- QA results ---

func (s *Store) AddQAResult(ctx context.Context, q QAResult) (QAResult, error) {
	if q.Findings == nil {
		q.Findings = []string{}
	}
	fj, _ := json.Marshal(q.Findings)
	err := s.db.QueryRowContext(ctx,
		`insert into qa_results(card_id, run_id, staged_url, verdict, findings)
		 values($1,$2,$3,$4,$5) returning id, created_at`,
		q.CardID, q.RunID, q.StagedURL, q.Verdict, fj).
		Scan(&q.ID, &q.CreatedAt)
	return q, err
}

func (s *Store) QAResultsByCard(ctx context.Context, cardID int64) ([]QAResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, run_id, staged_url, verdict, findings,
		        override_verdict, override_reason, overridden_at, created_at
		 from qa_results where card_id=$1 order by created_at desc, id desc`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []QAResult
	for rows.Next() {
		var q QAResult
		var fs []byte
		var ov, or sql.NullString
		var oat sql.NullTime
		if err := rows.Scan(&q.ID, &q.CardID, &q.RunID, &q.StagedURL, &q.Verdict, &fs,
			&ov, &or, &oat, &q.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(fs, &q.Findings)
		q.Override = scanOverride(ov, or, oat)
		out = append(out, q)
	}
	return out, rows.Err()
}

// --- Team runs ---

func (s *Store) AddTeamRun(ctx context.Context, cardID int64, runID, team, status, output string) (TeamRun, error) {
	var t TeamRun
	err := s.db.QueryRowContext(ctx,
		`insert into team_runs(card_id, run_id, team, status, output) values($1,$2,$3,$4,$5)
		 returning id, card_id, run_id, team, status, coalesce(output,''), coalesce(decision,''), decided_at, created_at`,
		cardID, runID, team, status, output).
		Scan(&t.ID, &t.CardID, &t.RunID, &t.Team, &t.Status, &t.Output, &t.Decision, &t.DecidedAt, &t.CreatedAt)
	return t, err
}

func (s *Store) TeamRunsByCard(ctx context.Context, cardID int64) ([]TeamRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, card_id, run_id, team, status, coalesce(output,''), coalesce(decision,''), decided_at, created_at
		 from team_runs where card_id=$1 order by created_at desc, id desc`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TeamRun
	for rows.Next() {
		var t TeamRun
		if err := rows.Scan(&t.ID, &t.CardID, &t.RunID, &t.Team, &t.Status, &t.Output, &t.Decision, &t.DecidedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DecideTeamRun records approve/revise/scrap exactly once per run.
func (s *Store) DecideTeamRun(ctx context.Context, id int64, decision string) error {
	res, err := s.db.ExecContext(ctx,
		`update team_runs set decision=$1, decided_at=$2 where id=$3 and decision is null`,
		decision, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `select exists(select 1 from team_runs where id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// --- Podcast guests ---

func (s *Store) AddPodcastGuest(ctx context.Context, g PodcastGuest) (PodcastGuest, error) {
	err := s.db.QueryRowContext(ctx,
		`insert into podcast_guests(name, show, topic, source_url) values($1,$2,$3,$4)
		 returning id, name, coalesce(show,''), coalesce(topic,''), coalesce(source_url,''), status, decided_at, created_at`,
		g.Name, g.Show, g.Topic, g.SourceURL).
		Scan(&g.ID, &g.Name, &g.Show, &g.Topic, &g.SourceURL, &g.Status, &g.DecidedAt, &g.CreatedAt)
	return g, err
}

func (s *Store) ListPodcastGuests(ctx context.Context, status string) ([]PodcastGuest, error) {
	q := `select id, name, coalesce(show,''), coalesce(topic,''), coalesce(source_url,''), status, decided_at, created_at
	      from podcast_guests`
	args := []any{}
	if status != "" {
		q += ` where status=$1`
		args = append(args, status)
	}
	q += ` order by created_at desc, id desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PodcastGuest
	for rows.Next() {
		var g PodcastGuest
		if err := rows.Scan(&g.ID, &g.Name, &g.Show, &g.Topic, &g.SourceURL, &g.Status, &g.DecidedAt, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DecidePodcastGuest moves a guest out of the sourced queue exactly once.
func (s *Store) DecidePodcastGuest(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`update podcast_guests set status=$1, decided_at=$2 where id=$3 and status='sourced'`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `select exists(select 1 from podcast_guests where id=$1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
