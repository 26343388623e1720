package models

import (
	"encoding/json"
	"testing"
)

func TestPrivacyRoundTrip(t *testing.T) {
	for _, p := range []Privacy{PrivacyPublic, PrivacyUnlisted} {
		data, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal %v: %v", p, err)
		}
		var back Privacy
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != p {
			t.Fatalf("round trip changed value: %v -> %v", p, back)
		}
	}
}

func TestPrivacyNames(t *testing.T) {
	if PrivacyPublic.String() != "Public" || PrivacyUnlisted.String() != "Unlisted" {
		t.Fatalf("unexpected names: %q, %q", PrivacyPublic.String(), PrivacyUnlisted.String())
	}
	if _, err := ParsePrivacy("Private"); err == nil {
		t.Fatal("expected error for out-of-enum value")
	}
	if _, err := ParsePrivacy(""); err == nil {
		t.Fatal("expected error for empty value")
	}
}

func TestPrivacyRejectsInvalidJSON(t *testing.T) {
	var p Privacy
	if err := json.Unmarshal([]byte(`3`), &p); err == nil {
		t.Fatal("expected error for numeric privacy")
	}
	if err := json.Unmarshal([]byte(`"Secret"`), &p); err == nil {
		t.Fatal("expected error for unknown name")
	}
	if _, err := json.Marshal(Privacy(9)); err == nil {
		t.Fatal("expected error marshaling invalid value")
	}
}

func TestRecordingSerializedFields(t *testing.T) {
	rec := Recording{Privacy: PrivacyPublic, Status: RecordingStatusCommitted}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"id", "name", "category_id", "privacy", "age_id", "gender_id", "location", "occupation", "parent_id"}
	if len(fields) != len(want) {
		t.Fatalf("serialized %d fields, want %d: %s", len(fields), len(want), data)
	}
	for _, f := range want {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing field %q in %s", f, data)
		}
	}
}
