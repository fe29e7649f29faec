package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jviciana84/dealerops-backend/pkg/migrate"
)

func TestMovementMigrationsForbidDoubleResolution(t *testing.T) {
	for _, pattern := range []string{"*_create_key_movements.sql", "*_create_document_movements.sql"} {
		matches, err := filepath.Glob(filepath.Join("migrations", pattern))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) == 0 {
			t.Fatalf("no migration matching %s", pattern)
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read migration file: %v", err)
		}
		content := string(data)

		if !strings.Contains(content, "CHECK (NOT (confirmed AND rejected))") {
			t.Errorf("%s: missing confirmed/rejected exclusion check", matches[0])
		}
		if !strings.Contains(content, "confirmation_deadline TIMESTAMPTZ") {
			t.Errorf("%s: missing confirmation_deadline column", matches[0])
		}
	}
}

func TestExtornosTokenIndexIsPartialUnique(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_extornos.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no extornos migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "UNIQUE INDEX IF NOT EXISTS idx_extornos_confirmation_token ON extornos (confirmation_token) WHERE confirmation_token IS NOT NULL") {
		t.Errorf("confirmation token index must be unique over non-null tokens")
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
