package api

import (
	"context"
	"fmt"

	"kitaportal/internal/domain/slot"
)

// SlotInput carries the admin slot form: a slot is fully replaced by
// date plus capacity, remaining is always backend-derived.
type SlotInput struct {
	Date     string `json:"date"`
	Capacity int    `json:"capacity"`
}

// Slots lists all slots visible to the current session.
func (c *Client) Slots(ctx context.Context) ([]slot.Slot, error) {
	var out struct {
		Data []slot.Slot `json:"data"`
	}
	if err := c.get(ctx, "/slots", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AdminSlots lists slots through the admin endpoint, which includes
// occupancy detail for management screens.
func (c *Client) AdminSlots(ctx context.Context) ([]slot.Slot, error) {
	var out struct {
		Data []slot.Slot `json:"data"`
	}
	if err := c.get(ctx, "/admin/slots", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CalendarMap fetches the date-to-slots availability map. A response
// without a calendar key decodes to an empty, usable map.
func (c *Client) CalendarMap(ctx context.Context) (slot.Calendar, error) {
	var out struct {
		Calendar slot.Calendar `json:"calendar"`
	}
	if err := c.get(ctx, "/slots/calendar", &out); err != nil {
		return nil, err
	}
	if out.Calendar == nil {
		out.Calendar = slot.Calendar{}
	}
	return out.Calendar, nil
}

// CreateSlot creates a slot for a date.
func (c *Client) CreateSlot(ctx context.Context, input SlotInput) error {
	return c.post(ctx, "/admin/slots", input, nil)
}

// UpdateSlot replaces a slot's date and capacity.
func (c *Client) UpdateSlot(ctx context.Context, id uint, input SlotInput) error {
	return c.put(ctx, fmt.Sprintf("/admin/slots/%d", id), input, nil)
}

// DeleteSlot removes a slot.
func (c *Client) DeleteSlot(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/admin/slots/%d", id))
}
