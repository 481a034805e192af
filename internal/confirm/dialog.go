// Package confirm gates destructive mutations behind a two-step
// confirm/result interaction.
package confirm

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// State is the presentation state of a dialog
type State string

const (
	StateIdle    State = "idle"
	StateConfirm State = "confirm"
	StateSuccess State = "success"
	StateError   State = "error"
)

var (
	ErrInvalidTransition = errors.New("invalid dialog transition")
	ErrUnknownToken      = errors.New("unknown or expired confirmation token")
	ErrNotOwner          = errors.New("confirmation belongs to another user")
	ErrUnknownResource   = errors.New("unknown resource")
)

// Dialog is the state machine of one pending delete:
// idle -> confirm -> (success | error) -> idle, or confirm -> idle on cancel.
type Dialog struct {
	Token     string
	Resource  string
	Noun      string
	TargetID  uint
	UserID    uint
	State     State
	Message   string
	Err       error
	CreatedAt time.Time
	ExpiresAt time.Time

	shops    []uint
	inFlight bool
	calls    int
}

func newDialog(token, resource, noun string, id, userID uint, now time.Time, ttl time.Duration) *Dialog {
	return &Dialog{
		Token:     token,
		Resource:  resource,
		Noun:      noun,
		TargetID:  id,
		UserID:    userID,
		State:     StateConfirm,
		Message:   fmt.Sprintf("Are you sure you want to delete this %s?", noun),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// begin moves a confirm dialog into the in-flight delete
func (d *Dialog) begin() error {
	if d.State != StateConfirm || d.inFlight {
		return fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, d.State)
	}
	d.inFlight = true
	d.calls++
	return nil
}

// finish records the outcome of the single delete call
func (d *Dialog) finish(err error, reason func(error) string) {
	d.inFlight = false
	if err != nil {
		d.State = StateError
		d.Err = err
		d.Message = fmt.Sprintf("Failed to delete the %s: %s", d.Noun, reason(err))
		return
	}
	d.State = StateSuccess
	d.Message = fmt.Sprintf("%s deleted successfully!", Capitalize(d.Noun))
}

// cancel returns a confirm dialog to idle without a mutation
func (d *Dialog) cancel() error {
	if d.State != StateConfirm || d.inFlight {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, d.State)
	}
	d.State = StateIdle
	d.Message = ""
	return nil
}

// close dismisses a result dialog
func (d *Dialog) close() (succeeded bool, err error) {
	switch d.State {
	case StateSuccess:
		succeeded = true
	case StateError:
	default:
		return false, fmt.Errorf("%w: close from %s", ErrInvalidTransition, d.State)
	}
	d.State = StateIdle
	d.Message = ""
	return succeeded, nil
}

// Calls returns how many delete calls the dialog issued
func (d *Dialog) Calls() int {
	return d.calls
}

// Capitalize upper-cases the first letter of a noun for sentence starts
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// View is what a client renders for a dialog
type View struct {
	Token     string    `json:"token"`
	Resource  string    `json:"resource"`
	ID        uint      `json:"id"`
	State     State     `json:"state"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (d *Dialog) view() *View {
	return &View{
		Token:     d.Token,
		Resource:  d.Resource,
		ID:        d.TargetID,
		State:     d.State,
		Message:   d.Message,
		ExpiresAt: d.ExpiresAt,
	}
}

// Reconcile tells the client which row to drop from its collection
type Reconcile struct {
	Resource string `json:"resource"`
	Remove   uint   `json:"remove"`
}

// normalizeResource lowercases and trims a resource name
func normalizeResource(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
