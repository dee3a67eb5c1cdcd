package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ports "findash/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{ServiceAccountJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "inline wins", cfg: Config{ServiceAccountJSON: `{"inline":true}`, ServiceAccountFile: path}, want: `{"inline":true}`},
		{name: "file", cfg: Config{ServiceAccountFile: path}, want: `{"type":"service_account"}`},
		{name: "missing file", cfg: Config{ServiceAccountFile: filepath.Join(dir, "nope.json")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := credentials(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("credentials: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAppend_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Transactions"}
	if _, err := c.Append(context.Background(), ports.Row{TransactionID: 1}); err == nil {
		t.Fatal("expected error when service is nil")
	}
}

func TestAppendRange(t *testing.T) {
	if got := appendRange("Transactions"); got != "Transactions!A:G" {
		t.Errorf("appendRange = %q", got)
	}
}
