// Package testdb provides the Postgres connection used by integration tests.
// Tests skip when no database is configured, except in CI where a missing
// database is a failure.
package testdb

import (
	"os"
	"testing"
)

// Environment variables checked for a test database URL, in order.
const (
	EnvTestDatabaseURL = "BAIKE_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
)

// URL returns the first configured test database URL, or "".
func URL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsCI reports whether tests run under a CI provider.
func IsCI() bool {
	for _, name := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// RequireURL returns the test database URL. Without one, t is skipped
// locally and failed in CI.
func RequireURL(t testing.TB) string {
	t.Helper()
	url := URL()
	if url != "" {
		return url
	}
	if IsCI() {
		t.Fatalf("%s must be set in CI", EnvTestDatabaseURL)
	}
	t.Skipf("%s not set, skipping database test", EnvTestDatabaseURL)
	return ""
}
