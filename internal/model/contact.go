package model

import "time"

// ContactStatus is the lifecycle state of a contact submission.
type ContactStatus string

const (
	ContactNew        ContactStatus = "new"
	ContactContacted  ContactStatus = "contacted"
	ContactInProgress ContactStatus = "in-progress"
	ContactCompleted  ContactStatus = "completed"
	ContactArchived   ContactStatus = "archived"
)

// Valid reports whether s is one of the enumerated contact statuses.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactContacted, ContactInProgress, ContactCompleted, ContactArchived:
		return true
	}
	return false
}

// ContactSubmission represents an inquiry submitted via the contact form.
type ContactSubmission struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Company     string        `json:"company,omitempty"`
	Service     string        `json:"service,omitempty"`
	Budget      string        `json:"budget,omitempty"`
	Timeline    string        `json:"timeline,omitempty"`
	Message     string        `json:"message"`
	Status      ContactStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	EmailSent   bool          `json:"emailSent"`
	SubmittedAt time.Time     `json:"submittedAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ContactListOptions carries filter and pagination parameters for listing contact submissions.
type ContactListOptions struct {
	// Status filters by submission status. Empty string and "all" return everything.
	Status string
	Limit  int
	Offset int
}

// ContactPatch holds the admin-editable fields of a submission. Nil fields are left unchanged.
type ContactPatch struct {
	Status *ContactStatus
	Notes  *string
}
