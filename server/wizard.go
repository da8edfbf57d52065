package main

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// The review wizard is a 3-step linear flow with backward navigation and no
// skip-ahead without validation. State lives server-side for the lifetime
// of one client instance and is deliberately not persisted.

type WizardStep int

const (
	StepSelectImage WizardStep = 1
	StepCompare     WizardStep = 2
	StepExtract     WizardStep = 3
)

var (
	ErrWizardBusy  = errors.New("wizard busy")
	ErrWizardStep  = errors.New("invalid wizard step")
	ErrNoImage     = errors.New("exactly one image attachment required")
	ErrSameImage   = errors.New("comparison must differ from selected image")
	ErrEmptyItems  = errors.New("at least one non-empty change request required")
	ErrWizardFound = errors.New("wizard not found")
)

type Wizard struct {
	ID     string
	CardID int64

	mu         sync.Mutex
	step       WizardStep
	imageKey   string
	compareKey string
	items      []string
	busy       bool
	expiresAt  time.Time
}

// WizardState is the JSON snapshot rendered back to the client.
type WizardState struct {
	ID         string     `json:"id"`
	CardID     int64      `json:"card_id"`
	Step       WizardStep `json:"step"`
	ImageKey   string     `json:"image_key,omitempty"`
	CompareKey string     `json:"compare_key,omitempty"`
	Items      []string   `json:"items,omitempty"`
	Busy       bool       `json:"busy"`
}

func (z *Wizard) State() WizardState {
	z.mu.Lock()
	defer z.mu.Unlock()
	return WizardState{
		ID: z.ID, CardID: z.CardID, Step: z.step,
		ImageKey: z.imageKey, CompareKey: z.compareKey,
		Items: append([]string(nil), z.items...), Busy: z.busy,
	}
}

// SelectImage picks exactly one image attachment and advances to step 2.
// isImage reports whether the key is an image attachment of the card.
func (z *Wizard) SelectImage(key string, isImage func(string) bool) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.busy {
		return ErrWizardBusy
	}
	if z.step != StepSelectImage {
		return ErrWizardStep
	}
	if key == "" || !isImage(key) {
		return ErrNoImage
	}
	z.imageKey = key
	z.step = StepCompare
	return nil
}

// SelectCompare records the optional comparison (empty means "no
// comparison") and advances to step 3.
func (z *Wizard) SelectCompare(key string, isImage func(string) bool) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.busy {
		return ErrWizardBusy
	}
	if z.step != StepCompare {
		return ErrWizardStep
	}
	if key != "" {
		if key == z.imageKey {
			return ErrSameImage
		}
		if !isImage(key) {
			return ErrNoImage
		}
	}
	z.compareKey = key
	z.step = StepExtract
	return nil
}

// Back steps backward without losing state.
func (z *Wizard) Back() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.busy {
		return ErrWizardBusy
	}
	if z.step <= StepSelectImage {
		return ErrWizardStep
	}
	z.step--
	return nil
}

// beginWork marks one extraction/submission in flight; a second call while
// pending fails so the UI can disable the triggering action.
func (z *Wizard) beginWork() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.step != StepExtract {
		return ErrWizardStep
	}
	if z.busy {
		return ErrWizardBusy
	}
	z.busy = true
	return nil
}

func (z *Wizard) endWork() {
	z.mu.Lock()
	z.busy = false
	z.mu.Unlock()
}

func (z *Wizard) setItems(items []string) {
	z.mu.Lock()
	z.items = items
	z.mu.Unlock()
}

// EditItems replaces the change-request list wholesale; the client may
// add/edit/remove items before final submission.
func (z *Wizard) EditItems(items []string) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.busy {
		return ErrWizardBusy
	}
	if z.step != StepExtract {
		return ErrWizardStep
	}
	z.items = items
	return nil
}

// submittable validates final-submission gating: at least one non-empty item.
func (z *Wizard) submittable() ([]string, string, string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	var items []string
	for _, it := range z.items {
		if strings.TrimSpace(it) != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, "", "", ErrEmptyItems
	}
	return items, z.imageKey, z.compareKey, nil
}

// WizardRegistry holds live wizards; expired entries die on access.
type WizardRegistry struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*Wizard
}

func NewWizardRegistry(ttl time.Duration) *WizardRegistry {
	return &WizardRegistry{ttl: ttl, m: map[string]*Wizard{}}
}

func (r *WizardRegistry) Create(cardID int64) *Wizard {
	z := &Wizard{
		ID:        uuid.NewString(),
		CardID:    cardID,
		step:      StepSelectImage,
		expiresAt: time.Now().Add(r.ttl),
	}
	r.mu.Lock()
	r.m[z.ID] = z
	r.mu.Unlock()
	return z
}

func (r *WizardRegistry) Get(id string) (*Wizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	z, ok := r.m[id]
	if !ok {
		return nil, ErrWizardFound
	}
	if time.Now().After(z.expiresAt) {
		delete(r.m, id)
		return nil, ErrWizardFound
	}
	return z, nil
}

func (r *WizardRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.m, id)
	r.mu.Unlock()
}
