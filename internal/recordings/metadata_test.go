package recordings

import (
	"errors"
	"strings"
	"testing"

	"github.com/voicebank/backend/internal/models"
)

const testMaxLen = 100

func TestParseMetadataValid(t *testing.T) {
	raw := `{
		"name": "morning story",
		"category_id": 1,
		"privacy": "Public",
		"age_id": 2,
		"gender_id": 1,
		"location": "Lisbon",
		"occupation": "teacher",
		"parent_id": "5cb4ab8a-5be5-45f1-8236-0123456789ab"
	}`
	rec, err := ParseMetadata([]byte(raw), testMaxLen)
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}
	if rec.Name != "morning story" {
		t.Fatalf("unexpected name: %q", rec.Name)
	}
	if rec.CategoryID != 1 {
		t.Fatalf("unexpected category: %d", rec.CategoryID)
	}
	if rec.Privacy != models.PrivacyPublic {
		t.Fatalf("unexpected privacy: %v", rec.Privacy)
	}
	if rec.AgeID == nil || *rec.AgeID != 2 {
		t.Fatalf("unexpected age_id: %v", rec.AgeID)
	}
	if rec.ParentID == nil || rec.ParentID.String() != "5cb4ab8a-5be5-45f1-8236-0123456789ab" {
		t.Fatalf("unexpected parent_id: %v", rec.ParentID)
	}
}

func TestParseMetadataMinimal(t *testing.T) {
	rec, err := ParseMetadata([]byte(`{"name":"x","category_id":1,"privacy":"Unlisted"}`), testMaxLen)
	if err != nil {
		t.Fatalf("ParseMetadata returned error: %v", err)
	}
	if rec.Privacy != models.PrivacyUnlisted {
		t.Fatalf("unexpected privacy: %v", rec.Privacy)
	}
	if rec.AgeID != nil || rec.GenderID != nil || rec.Location != nil || rec.Occupation != nil || rec.ParentID != nil {
		t.Fatal("optional fields should be nil when absent")
	}
}

func TestParseMetadataRejections(t *testing.T) {
	long := strings.Repeat("a", testMaxLen+1)
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"name":`},
		{"missing name", `{"category_id":1,"privacy":"Public"}`},
		{"blank name", `{"name":"  ","category_id":1,"privacy":"Public"}`},
		{"missing category", `{"name":"x","privacy":"Public"}`},
		{"missing privacy", `{"name":"x","category_id":1}`},
		{"privacy out of enum", `{"name":"x","category_id":1,"privacy":"Secret"}`},
		{"privacy wrong type", `{"name":"x","category_id":1,"privacy":1}`},
		{"category wrong type", `{"name":"x","category_id":"one","privacy":"Public"}`},
		{"unknown field", `{"name":"x","category_id":1,"privacy":"Public","color":"red"}`},
		{"name too long", `{"name":"` + long + `","category_id":1,"privacy":"Public"}`},
		{"location too long", `{"name":"x","category_id":1,"privacy":"Public","location":"` + long + `"}`},
		{"occupation too long", `{"name":"x","category_id":1,"privacy":"Public","occupation":"` + long + `"}`},
		{"bad parent id", `{"name":"x","category_id":1,"privacy":"Public","parent_id":"not-a-uuid"}`},
		{"trailing data", `{"name":"x","category_id":1,"privacy":"Public"} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetadata([]byte(tt.raw), testMaxLen)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidMetadata) {
				t.Fatalf("error does not wrap ErrInvalidMetadata: %v", err)
			}
		})
	}
}
