package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port: %q", cfg.Server.Port)
	}
	if cfg.Upload.MaxContentLength != 8*1024*1024 {
		t.Fatalf("unexpected max content length: %d", cfg.Upload.MaxContentLength)
	}
	if cfg.Upload.MaxStringLength != 100 {
		t.Fatalf("unexpected max string length: %d", cfg.Upload.MaxStringLength)
	}
	if cfg.S3.CacheControl == "" {
		t.Fatal("cache control default missing")
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("redis should default to disabled, got %q", cfg.Redis.Addr)
	}
	if cfg.Database.MaxConns != 10 || cfg.Database.ConnectTimeoutSec != 5 {
		t.Fatalf("unexpected pool defaults: %+v", cfg.Database)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://db.internal:5432/voices?sslmode=require")
	t.Setenv("S3_ENDPOINT_URL", "https://objects.example")
	t.Setenv("S3_BUCKET_NAME", "voices")
	t.Setenv("UPLOAD_CACHE_CONTROL", "public, max-age=60")
	t.Setenv("MAX_CONTENT_LENGTH", "1048576")
	t.Setenv("MAX_STRING_LENGTH", "50")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_CONNECT_TIMEOUT_SEC", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("unexpected port: %q", cfg.Server.Port)
	}
	if cfg.Database.DSN() != "postgres://db.internal:5432/voices?sslmode=require" {
		t.Fatalf("unexpected DSN: %q", cfg.Database.DSN())
	}
	if cfg.S3.EndpointURL != "https://objects.example" || cfg.S3.Bucket != "voices" {
		t.Fatalf("unexpected S3 config: %+v", cfg.S3)
	}
	if cfg.Upload.MaxContentLength != 1048576 || cfg.Upload.MaxStringLength != 50 {
		t.Fatalf("unexpected upload config: %+v", cfg.Upload)
	}
	if cfg.Database.MaxConns != 4 || cfg.Database.ConnectTimeoutSec != 2 {
		t.Fatalf("unexpected pool config: %+v", cfg.Database)
	}
}

func TestDSNFromComponents(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: "5432", User: "u", Password: "p",
		DBName: "voicebank", SSLMode: "disable",
	}
	want := "postgres://u:p@localhost:5432/voicebank?sslmode=disable"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN %q, want %q", got, want)
	}
}

func TestLoadRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("MAX_CONTENT_LENGTH", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative MAX_CONTENT_LENGTH")
	}
}
