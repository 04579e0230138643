package api

import (
	"context"
	"fmt"

	"kitaportal/internal/domain/child"
)

// ChildInput carries the child form fields.
type ChildInput struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Birthdate string `json:"birthdate,omitempty"`
}

// Children lists the parent's own children.
func (c *Client) Children(ctx context.Context) ([]child.Child, error) {
	var out struct {
		Data []child.Child `json:"data"`
	}
	if err := c.get(ctx, "/parent/children", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AllChildren lists every registered child with guardian detail, for
// admin screens.
func (c *Client) AllChildren(ctx context.Context) ([]child.Child, error) {
	var out struct {
		Data []child.Child `json:"data"`
	}
	if err := c.get(ctx, "/admin/children", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// AddChild registers a child under the parent's account.
func (c *Client) AddChild(ctx context.Context, input ChildInput) error {
	return c.post(ctx, "/parent/children", input, nil)
}

// EditChild updates a child's details.
func (c *Client) EditChild(ctx context.Context, id uint, input ChildInput) error {
	return c.put(ctx, fmt.Sprintf("/parent/children/%d", id), input, nil)
}

// DeleteChild removes a child from the parent's account.
func (c *Client) DeleteChild(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/parent/children/%d", id))
}
