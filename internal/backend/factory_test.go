package backend

import (
	"context"
	"path/filepath"
	"testing"

	"findash/internal/config"
)

func TestBackendTypeIsValid(t *testing.T) {
	tests := []struct {
		in   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{PostgresBackend, true},
		{MemoryBackend, true},
		{"sheets", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "postgres", DatabaseURL: "postgres://localhost/findash"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != PostgresBackend || got.DatabaseURL != cfg.DatabaseURL {
		t.Errorf("got %+v", got)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "mongo"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"postgres missing url", Config{Type: PostgresBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "findash.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Cleanup()
			if err := res.Store.Ping(ctx); err != nil {
				t.Fatalf("Ping: %v", err)
			}
			u, err := res.Store.EnsureUser(ctx, "alice", "")
			if err != nil || u.ID == 0 {
				t.Fatalf("EnsureUser = %+v, %v", u, err)
			}
		})
	}
}
