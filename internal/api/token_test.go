package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func writeToken(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "token")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	return path
}

func TestTokenFile_MissingFileMeansNoToken(t *testing.T) {
	tf := NewTokenFile(filepath.Join(t.TempDir(), "absent"), nil)
	if got := tf.Token(); got != "" {
		t.Fatalf("expected empty token; got %q", got)
	}
}

func TestTokenFile_ReadsAndTrims(t *testing.T) {
	path := writeToken(t, t.TempDir(), "  opaque-token\n")
	tf := NewTokenFile(path, nil)
	if got := tf.Token(); got != "opaque-token" {
		t.Fatalf("expected %q; got %q", "opaque-token", got)
	}
}

func TestTokenFile_ExpiredJWTTreatedAsMissing(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "rec-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	path := writeToken(t, t.TempDir(), signed)
	tf := NewTokenFile(path, nil)
	if got := tf.Token(); got != "" {
		t.Fatalf("expected expired token to be dropped; got %q", got)
	}
}

func TestTokenFile_WatchPicksUpLogin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")

	tf := NewTokenFile(path, nil)
	defer tf.Close()
	if err := tf.Watch(); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if got := tf.Token(); got != "" {
		t.Fatalf("expected no token before login; got %q", got)
	}

	writeToken(t, dir, "fresh-token")

	deadline := time.Now().Add(2 * time.Second)
	for tf.Token() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := tf.Token(); got != "fresh-token" {
		t.Fatalf("expected watcher to pick up token; got %q", got)
	}
}
