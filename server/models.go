package main

import "time"

type Board struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Type gates which optional card tabs appear (design, video, dev, events, podcast)
	Type      string    `json:"type"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy *int64    `json:"created_by,omitempty"`
}

type List struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"board_id"`
	Title     string    `json:"title"`
	Pos       int64     `json:"pos"`
	CreatedAt time.Time `json:"created_at"`
}

type Card struct {
	ID          int64      `json:"id"`
	ListID      int64      `json:"list_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Brief       string     `json:"brief,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Size        string     `json:"size,omitempty"`
	Pos         int64      `json:"pos"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	// CoverKey is the storage key of the cover image; the aggregate carries a signed URL instead
	CoverKey       string    `json:"cover_key,omitempty"`
	ApprovalStatus string    `json:"approval_status,omitempty"`
	ClientID       *int64    `json:"client_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Label struct {
	ID      int64  `json:"id"`
	BoardID int64  `json:"board_id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
}

type Comment struct {
	ID        int64      `json:"id"`
	CardID    int64      `json:"card_id"`
	ParentID  *int64     `json:"parent_id,omitempty"`
	AuthorID  *int64     `json:"author_id,omitempty"`
	Body      string     `json:"body"`
	Mentions  []int64    `json:"mentions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// CommentThread is a top-level comment with its replies, oldest reply first.
type CommentThread struct {
	Comment
	Replies []Comment `json:"replies,omitempty"`
}

type Attachment struct {
	ID         int64     `json:"id"`
	CardID     int64     `json:"card_id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsImage reports whether the attachment can feed the review wizard.
func (a Attachment) IsImage() bool {
	return len(a.MimeType) > 6 && a.MimeType[:6] == "image/"
}

type Checklist struct {
	ID        int64           `json:"id"`
	CardID    int64           `json:"card_id"`
	Title     string          `json:"title"`
	Items     []ChecklistItem `json:"items,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type ChecklistItem struct {
	ID          int64     `json:"id"`
	ChecklistID int64     `json:"checklist_id"`
	Body        string    `json:"body"`
	Done        bool      `json:"done"`
	Pos         int64     `json:"pos"`
	CreatedAt   time.Time `json:"created_at"`
}

// Progress returns completed count, total count, and whole percent (0 when empty).
func (c Checklist) Progress() (done, total, percent int) {
	total = len(c.Items)
	for _, it := range c.Items {
		if it.Done {
			done++
		}
	}
	if total > 0 {
		percent = done * 100 / total
	}
	return done, total, percent
}

// ReviewResult is an append-only AI design-review record; each run inserts a
// new row and "latest" is whichever sorts newest by creation time.
type ReviewResult struct {
	ID             int64     `json:"id"`
	CardID         int64     `json:"card_id"`
	RunID          string    `json:"run_id"`
	ImageKey       string    `json:"image_key"`
	CompareKey     string    `json:"compare_key,omitempty"`
	Verdict        string    `json:"verdict"`
	ChangeRequests []string  `json:"change_requests,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Override       *Override `json:"override,omitempty"`
}

type QAResult struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	RunID     string    `json:"run_id"`
	StagedURL string    `json:"staged_url"`
	Verdict   string    `json:"verdict"`
	Findings  []string  `json:"findings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Override  *Override `json:"override,omitempty"`
}

// Override is a terminal annotation on a review/QA result; once set the
// result is immutable for override purposes.
type Override struct {
	Verdict   string    `json:"verdict"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is a lead/CRM record for the events vertical.
type Client struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	ContactEmail string     `json:"contact_email,omitempty"`
	ContactPhone string     `json:"contact_phone,omitempty"`
	EventDate    *time.Time `json:"event_date,omitempty"`
	Venue        string     `json:"venue,omitempty"`
	BudgetCents  int64      `json:"budget_cents,omitempty"`
	Stage        string     `json:"stage"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TeamRun is a read-mostly pipeline run; execution happens externally and
// this service records the run plus a single decision.
type TeamRun struct {
	ID        int64      `json:"id"`
	CardID    int64      `json:"card_id"`
	RunID     string     `json:"run_id"`
	Team      string     `json:"team"`
	Status    string     `json:"status"`
	Output    string     `json:"output,omitempty"`
	Decision  string     `json:"decision,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type PodcastGuest struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Show      string     `json:"show,omitempty"`
	Topic     string     `json:"topic,omitempty"`
	SourceURL string     `json:"source_url,omitempty"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CardAggregate is the one-fetch payload behind the card detail view.
// Every field is independently absent-safe.
type CardAggregate struct {
	Card      *Card           `json:"card,omitempty"`
	BoardID   int64           `json:"board_id,omitempty"`
	BoardName string          `json:"board_name,omitempty"`
	BoardType string          `json:"board_type,omitempty"`
	ListName  string          `json:"list_name,omitempty"`
	Labels    []Label         `json:"labels,omitempty"`
	Assignees []User          `json:"assignees,omitempty"`
	Comments  []CommentThread `json:"comments,omitempty"`
	CoverURL  string          `json:"cover_url,omitempty"`
	Tabs      []TabKey        `json:"tabs,omitempty"`
	ActiveTab TabKey          `json:"active_tab,omitempty"`
}
