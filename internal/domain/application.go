package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

// RoleApplication is a user's request to acquire an elevated role. It
// transitions exactly once from pending to approved or rejected; after that
// only documents may be appended.
type RoleApplication struct {
	ID               int32             `json:"id"`
	ApplicantID      int32             `json:"applicant_id"`
	RoleName         string            `json:"role_name"`
	OrganizationName string            `json:"organization_name,omitempty"`
	RegistrationNo   string            `json:"registration_no,omitempty"`
	Justification    string            `json:"justification"`
	Status           ApplicationStatus `json:"status"`
	ReviewedBy       *int32            `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time        `json:"reviewed_at,omitempty"`
	AdminNotes       string            `json:"admin_notes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// RoleApplicationDocument is a file attached to one application. Documents
// are append-only; they are never removed through these flows.
type RoleApplicationDocument struct {
	ID            int32     `json:"id"`
	ApplicationID int32     `json:"application_id"`
	FileName      string    `json:"file_name"`
	StorageKey    string    `json:"storage_key"`
	ContentType   string    `json:"content_type"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
