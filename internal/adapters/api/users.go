package api

import (
	"context"
	"fmt"

	"kitaportal/internal/domain/user"
)

// CreateUserInput carries the admin "add user" form.
type CreateUserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Users lists all accounts, admin only.
func (c *Client) Users(ctx context.Context) ([]user.User, error) {
	var out struct {
		Data []user.User `json:"data"`
	}
	if err := c.get(ctx, "/admin/users", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateUser creates an account with an explicit role.
func (c *Client) CreateUser(ctx context.Context, input CreateUserInput) error {
	return c.post(ctx, "/admin/users", input, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/admin/users/%d", id))
}

// UpdateUserRole switches an account between parent and admin.
func (c *Client) UpdateUserRole(ctx context.Context, id uint, role string) error {
	body := map[string]string{"role": role}
	return c.put(ctx, fmt.Sprintf("/admin/users/%d/role", id), body, nil)
}
