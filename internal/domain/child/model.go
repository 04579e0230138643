package child

import (
	"errors"
	"time"
)

// Age bounds for enrolment. The backend enforces these too; the portal
// validates before submitting so typos fail without a round trip.
const (
	MinAge = 2
	MaxAge = 5
)

const birthdateLayout = "2006-01-02"

// Parent is the slim guardian summary the backend embeds in child and
// reservation payloads for admin views.
type Parent struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the guardian's name, falling back to email.
func (p *Parent) DisplayName() string {
	if p.FirstName == "" && p.LastName == "" {
		return p.Email
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Child is a kindergarten child owned by a parent account.
// INVARIANT: Age is within [MinAge, MaxAge] for a valid child.
type Child struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Age       int     `json:"age"`
	Birthdate string  `json:"birthdate,omitempty"`
	ParentID  uint    `json:"parent_id"`
	Parent    *Parent `json:"parent,omitempty"`
}

// Validate checks the child's invariants.
// POST: returns nil if valid, error describing the first violation otherwise
func (c *Child) Validate() error {
	if c.Name == "" {
		return errors.New("child name cannot be empty")
	}
	if c.Age < MinAge || c.Age > MaxAge {
		return errors.New("child age must be between 2 and 5")
	}
	if c.Birthdate != "" {
		if _, err := time.Parse(birthdateLayout, c.Birthdate); err != nil {
			return errors.New("child birthdate must be YYYY-MM-DD")
		}
	}
	return nil
}
