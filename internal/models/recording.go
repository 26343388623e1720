package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recording status values. A row starts pending and is flipped to committed
// only after its audio object has been stored; reads never see pending rows.
const (
	RecordingStatusPending   = "pending"
	RecordingStatusCommitted = "committed"
)

// Privacy is the visibility of a recording. Stored as its numeric value,
// serialized as its name.
type Privacy int16

const (
	PrivacyPublic   Privacy = 1
	PrivacyUnlisted Privacy = 2
)

// String returns the wire name of the privacy value.
func (p Privacy) String() string {
	switch p {
	case PrivacyPublic:
		return "Public"
	case PrivacyUnlisted:
		return "Unlisted"
	}
	return fmt.Sprintf("Privacy(%d)", int16(p))
}

// ParsePrivacy maps a wire name back to its value.
func ParsePrivacy(s string) (Privacy, error) {
	switch s {
	case "Public":
		return PrivacyPublic, nil
	case "Unlisted":
		return PrivacyUnlisted, nil
	}
	return 0, fmt.Errorf("invalid privacy %q", s)
}

// MarshalJSON serializes the privacy as its name.
func (p Privacy) MarshalJSON() ([]byte, error) {
	switch p {
	case PrivacyPublic, PrivacyUnlisted:
		return json.Marshal(p.String())
	}
	return nil, fmt.Errorf("invalid privacy %d", int16(p))
}

// UnmarshalJSON parses a privacy name.
func (p *Privacy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("privacy must be a string")
	}
	parsed, err := ParsePrivacy(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Recording is a stored audio submission.
type Recording struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	CategoryID int16      `json:"category_id"`
	Privacy    Privacy    `json:"privacy"`
	AgeID      *int16     `json:"age_id"`
	GenderID   *int16     `json:"gender_id"`
	Location   *string    `json:"location"`
	Occupation *string    `json:"occupation"`
	ParentID   *uuid.UUID `json:"parent_id"`
	Status     string     `json:"-"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}

// NewRecording is a validated submission before an ID has been assigned.
type NewRecording struct {
	Name       string
	CategoryID int16
	Privacy    Privacy
	AgeID      *int16
	GenderID   *int16
	Location   *string
	Occupation *string
	ParentID   *uuid.UUID
}

// Label is a row in one of the lookup tables (category, age, gender).
type Label struct {
	ID    int16  `json:"id"`
	Label string `json:"label"`
}
