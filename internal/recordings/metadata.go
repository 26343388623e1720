package recordings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voicebank/backend/internal/models"
)

// ErrInvalidMetadata reports a metadata document that fails schema
// validation. All metadata failures wrap it.
var ErrInvalidMetadata = errors.New("invalid recording metadata")

// uploadMetadata is the wire schema of the metadata form part. Unknown
// fields are rejected; pointers distinguish absent from zero.
type uploadMetadata struct {
	Name       *string         `json:"name"`
	CategoryID *int16          `json:"category_id"`
	Privacy    *models.Privacy `json:"privacy"`
	AgeID      *int16          `json:"age_id"`
	GenderID   *int16          `json:"gender_id"`
	Location   *string         `json:"location"`
	Occupation *string         `json:"occupation"`
	ParentID   *string         `json:"parent_id"`
}

// ParseMetadata decodes and validates the metadata document, mapping it to
// a typed submission without an ID. maxStringLength bounds every free-text
// field.
func ParseMetadata(raw []byte, maxStringLength int) (*models.NewRecording, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var meta uploadMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	// Trailing content after the JSON document is malformed input too.
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidMetadata)
	}

	if meta.Name == nil || strings.TrimSpace(*meta.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	}
	if len(*meta.Name) > maxStringLength {
		return nil, fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidMetadata, maxStringLength)
	}
	if meta.CategoryID == nil {
		return nil, fmt.Errorf("%w: category_id is required", ErrInvalidMetadata)
	}
	if meta.Privacy == nil {
		return nil, fmt.Errorf("%w: privacy is required", ErrInvalidMetadata)
	}

	for field, v := range map[string]*string{"location": meta.Location, "occupation": meta.Occupation} {
		if v != nil && len(*v) > maxStringLength {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidMetadata, field, maxStringLength)
		}
	}

	var parentID *uuid.UUID
	if meta.ParentID != nil {
		id, err := uuid.Parse(*meta.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%w: parent_id is not a valid id", ErrInvalidMetadata)
		}
		parentID = &id
	}

	return &models.NewRecording{
		Name:       *meta.Name,
		CategoryID: *meta.CategoryID,
		Privacy:    *meta.Privacy,
		AgeID:      meta.AgeID,
		GenderID:   meta.GenderID,
		Location:   meta.Location,
		Occupation: meta.Occupation,
		ParentID:   parentID,
	}, nil
}
