package storage

import "testing"

func TestRecordingKey(t *testing.T) {
	got := RecordingKey("5cb4ab8a-5be5-45f1-8236-0123456789ab")
	if got != "5cb4ab8a-5be5-45f1-8236-0123456789ab.ogg" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestPublicObjectURL(t *testing.T) {
	aws := &S3{cfg: S3Config{Region: "eu-west-1", Bucket: "voices"}}
	if got := aws.PublicObjectURL("a.ogg"); got != "https://voices.s3.eu-west-1.amazonaws.com/a.ogg" {
		t.Fatalf("unexpected AWS URL: %q", got)
	}

	custom := &S3{cfg: S3Config{EndpointURL: "https://objects.example/", Bucket: "voices"}}
	if got := custom.PublicObjectURL("a.ogg"); got != "https://objects.example/voices/a.ogg" {
		t.Fatalf("unexpected custom endpoint URL: %q", got)
	}
}
