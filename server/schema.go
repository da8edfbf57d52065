package main

const schema = `
create table if not exists boards(
    id bigserial primary key,
    title text not null check (length(title) > 0),
    type text not null default 'design',
    color text,
    pos bigint not null default 1000,
    created_by bigint,
    created_at timestamptz not null default now()
);
create index if not exists boards_pos_idx on boards(pos);

create table if not exists lists(
    id bigserial primary key,
    board_id bigint not null references boards(id) on delete cascade,
    title text not null check (length(title) > 0),
    pos bigint not null default 1000,
    created_at timestamptz not null default now()
);
create index if not exists lists_board_idx on lists(board_id);

create table if not exists clients(
    id bigserial primary key,
    name text not null check (length(name) > 0),
    contact_email text,
    contact_phone text,
    event_date timestamptz,
    venue text,
    budget_cents bigint,
    stage text not null default 'new',
    notes text,
    created_at timestamptz not null default now()
);

create table if not exists cards(
    id bigserial primary key,
    list_id bigint not null references lists(id) on delete cascade,
    title text not null check (length(title) > 0),
    description text not null default '',
    brief text,
    priority text,
    size text,
    pos bigint not null default 1000,
    start_at timestamptz,
    due_at timestamptz,
    cover_key text,
    approval_status text,
    client_id bigint references clients(id) on delete set null,
    created_at timestamptz not null default now()
);
create index if not exists cards_list_idx on cards(list_id);

create table if not exists users(
    id bigserial primary key,
    email text unique not null,
    password_hash text not null default '',
    name text not null default '',
    avatar_url text,
    is_active boolean not null default true,
    created_at timestamptz not null default now()
);

create table if not exists sessions(
    id bigserial primary key,
    user_id bigint not null references users(id) on delete cascade,
    token text unique not null,
    created_at timestamptz not null default now(),
    expires_at timestamptz not null
);

create table if not exists comments(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    parent_id bigint references comments(id) on delete cascade,
    author_id bigint references users(id) on delete set null,
    body text not null check (length(body) > 0),
    mentions jsonb not null default '[]',
    created_at timestamptz not null default now(),
    updated_at timestamptz
);
create index if not exists comments_card_idx on comments(card_id);

create table if not exists labels(
    id bigserial primary key,
    board_id bigint not null references boards(id) on delete cascade,
    name text not null,
    color text
);
create table if not exists card_labels(
    card_id bigint not null references cards(id) on delete cascade,
    label_id bigint not null references labels(id) on delete cascade,
    primary key(card_id, label_id)
);
create table if not exists card_assignees(
    card_id bigint not null references cards(id) on delete cascade,
    user_id bigint not null references users(id) on delete cascade,
    primary key(card_id, user_id)
);

create table if not exists attachments(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    file_name text not null,
    mime_type text not null default 'application/octet-stream',
    size_bytes bigint not null default 0,
    storage_key text unique not null,
    created_at timestamptz not null default now()
);
create index if not exists attachments_card_idx on attachments(card_id);

create table if not exists checklists(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    title text not null check (length(title) > 0),
    created_at timestamptz not null default now()
);
create table if not exists checklist_items(
    id bigserial primary key,
    checklist_id bigint not null references checklists(id) on delete cascade,
    body text not null,
    done boolean not null default false,
    pos bigint not null default 1000,
    created_at timestamptz not null default now()
);
create index if not exists checklist_items_list_idx on checklist_items(checklist_id);

-- review/QA results are append-only: one row per run, never updated except
-- for the one-shot override columns
create table if not exists review_results(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    run_id text not null,
    image_key text not null,
    compare_key text,
    verdict text not null,
    change_requests jsonb not null default '[]',
    override_verdict text,
    override_reason text,
    overridden_at timestamptz,
    created_at timestamptz not null default now()
);
create index if not exists review_results_card_idx on review_results(card_id);

create table if not exists qa_results(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    run_id text not null,
    staged_url text not null,
    verdict text not null,
    findings jsonb not null default '[]',
    override_verdict text,
    override_reason text,
    overridden_at timestamptz,
    created_at timestamptz not null default now()
);
create index if not exists qa_results_card_idx on qa_results(card_id);

create table if not exists team_runs(
    id bigserial primary key,
    card_id bigint not null references cards(id) on delete cascade,
    run_id text not null,
    team text not null,
    status text not null default 'pending',
    output text,
    decision text,
    decided_at timestamptz,
    created_at timestamptz not null default now()
);

create table if not exists podcast_guests(
    id bigserial primary key,
    name text not null check (length(name) > 0),
    show text,
    topic text,
    source_url text,
    status text not null default 'sourced',
    decided_at timestamptz,
    created_at timestamptz not null default now()
);
`
