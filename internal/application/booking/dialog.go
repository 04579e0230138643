package booking

import (
	"context"
	"errors"
	"fmt"

	"kitaportal/internal/domain/child"
	"kitaportal/internal/domain/slot"
)

// Dialog states. Failed is not a resting state: a failed submit
// returns the dialog to StateReady with LastError set and both
// selections intact, so the parent can retry without re-picking.
const (
	StateEmpty       = "empty"
	StateChildChosen = "child_chosen"
	StateSlotChosen  = "slot_chosen"
	StateReady       = "ready"
	StateSubmitting  = "submitting"
	StateSucceeded   = "succeeded"
)

// Reserver submits a reservation to the backend.
type Reserver interface {
	Reserve(ctx context.Context, slotID, childID uint) error
}

// Dialog is the booking dialog for one date. It tracks which child and
// slot the parent has picked and gates submission until both are
// chosen. The candidate lists are fixed at open time; availability is
// re-checked by the backend on submit.
type Dialog struct {
	date     string
	children []child.Child
	slots    []slot.Slot

	childID uint
	slotID  uint
	state   string
	lastErr error
}

// NewDialog opens a dialog for date offering the given children and
// the slots still having places on that date.
func NewDialog(date string, children []child.Child, slots []slot.Slot) *Dialog {
	return &Dialog{
		date:     date,
		children: children,
		slots:    slots,
		state:    StateEmpty,
	}
}

// Date returns the date the dialog was opened for.
func (d *Dialog) Date() string { return d.date }

// Children returns the selectable children.
func (d *Dialog) Children() []child.Child { return d.children }

// Slots returns the selectable slots.
func (d *Dialog) Slots() []slot.Slot { return d.slots }

// State returns the current dialog state.
func (d *Dialog) State() string { return d.state }

// ChildID returns the selected child, zero when none is selected.
func (d *Dialog) ChildID() uint { return d.childID }

// SlotID returns the selected slot, zero when none is selected.
func (d *Dialog) SlotID() uint { return d.slotID }

// LastError returns the error of the most recent failed submit, nil
// after a Reset or a success.
func (d *Dialog) LastError() error { return d.lastErr }

// SelectChild records the parent's child choice.
// PRE: id belongs to one of the offered children
// POST: state advances to StateChildChosen or, if a slot is already
// selected, StateReady
func (d *Dialog) SelectChild(id uint) error {
	if d.state == StateSubmitting || d.state == StateSucceeded {
		return fmt.Errorf("cannot change selection in state %s", d.state)
	}
	found := false
	for _, c := range d.children {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		return errors.New("child is not selectable in this dialog")
	}
	d.childID = id
	if d.slotID != 0 {
		d.state = StateReady
	} else {
		d.state = StateChildChosen
	}
	return nil
}

// SelectSlot records the parent's slot choice.
// PRE: id belongs to one of the offered slots and still has a place
// POST: state advances to StateSlotChosen or, if a child is already
// selected, StateReady
func (d *Dialog) SelectSlot(id uint) error {
	if d.state == StateSubmitting || d.state == StateSucceeded {
		return fmt.Errorf("cannot change selection in state %s", d.state)
	}
	var picked *slot.Slot
	for i := range d.slots {
		if d.slots[i].ID == id {
			picked = &d.slots[i]
			break
		}
	}
	if picked == nil {
		return errors.New("slot is not selectable in this dialog")
	}
	if !picked.HasCapacity() {
		return errors.New("slot has no places left")
	}
	d.slotID = id
	if d.childID != 0 {
		d.state = StateReady
	} else {
		d.state = StateSlotChosen
	}
	return nil
}

// CanSubmit reports whether the dialog accepts a submit right now.
func (d *Dialog) CanSubmit() bool {
	return d.state == StateReady
}

// Submit sends the reservation through the reserver.
// PRE: state is StateReady
// POST: on success the state is StateSucceeded; on failure the state
// returns to StateReady with LastError set and selections preserved
func (d *Dialog) Submit(ctx context.Context, reserver Reserver) error {
	if !d.CanSubmit() {
		return fmt.Errorf("cannot submit in state %s", d.state)
	}
	d.state = StateSubmitting
	if err := reserver.Reserve(ctx, d.slotID, d.childID); err != nil {
		d.state = StateReady
		d.lastErr = err
		return err
	}
	d.state = StateSucceeded
	d.lastErr = nil
	return nil
}

// Reset clears both selections and any recorded error, returning the
// dialog to its opening state.
func (d *Dialog) Reset() {
	d.childID = 0
	d.slotID = 0
	d.state = StateEmpty
	d.lastErr = nil
}
