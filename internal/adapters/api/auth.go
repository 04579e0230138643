package api

import (
	"context"
	"io"

	"kitaportal/internal/domain/user"
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type userEnvelope struct {
	User user.User `json:"user"`
}

// Login authenticates against the backend. On success the backend's
// session cookie and initial CSRF token are captured into the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.post(ctx, "/auth/login", body, nil)
}

// Register creates a new parent account.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	return c.post(ctx, "/auth/register", input, nil)
}

// Logout invalidates the backend session.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

// Profile fetches the session's identity. A failure here means the
// session is no longer valid and the caller should treat the user as
// logged out.
func (c *Client) Profile(ctx context.Context) (user.User, error) {
	var out userEnvelope
	if err := c.get(ctx, "/user/profile", &out); err != nil {
		return user.User{}, err
	}
	return out.User, nil
}

// UpdateProfile saves the editable profile fields and returns the
// server's updated view of the user.
func (c *Client) UpdateProfile(ctx context.Context, input ProfileInput) (user.User, error) {
	var out userEnvelope
	if err := c.put(ctx, "/user/profile", input, &out); err != nil {
		return user.User{}, err
	}
	return out.User, nil
}

// UploadProfilePicture uploads an avatar image and returns the stored
// picture URL.
func (c *Client) UploadProfilePicture(ctx context.Context, filename string, file io.Reader) (string, error) {
	var out struct {
		ProfilePicture string `json:"profile_picture"`
	}
	if err := c.doMultipart(ctx, "/user/profile-picture", "picture", filename, file, &out); err != nil {
		return "", err
	}
	return out.ProfilePicture, nil
}
