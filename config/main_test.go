package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run unless GO_ENV=test so a stray DATABASE_URL
// never points these tests at a real database.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "" && env != "test" {
		fmt.Fprintf(os.Stderr, "config tests must run with GO_ENV=test (current: %q)\n", env)
		os.Exit(1)
	}
	if err := os.Setenv("GO_ENV", "test"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set GO_ENV: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}
