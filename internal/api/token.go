package api

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// StaticToken is a fixed bearer token (tests, CI, SCOUT_TOKEN env).
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// TokenFile reads the bearer token the portal's login flow writes to disk.
// The file may not exist yet (auth still loading in another window), in which
// case Token returns "" and callers no-op. An fsnotify watch on the parent
// directory picks the token up once login completes, without a restart.
type TokenFile struct {
	path string
	log  *zap.Logger

	mu    sync.RWMutex
	token string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewTokenFile(path string, log *zap.Logger) *TokenFile {
	if log == nil {
		log = zap.NewNop()
	}
	tf := &TokenFile{path: path, log: log, done: make(chan struct{})}
	tf.reload()
	return tf
}

func (tf *TokenFile) Token() string {
	tf.mu.RLock()
	defer tf.mu.RUnlock()
	return tf.token
}

// Watch starts watching the token file's directory for changes. Watching the
// directory rather than the file survives the write-rename dance most login
// flows use.
func (tf *TokenFile) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(tf.path)); err != nil {
		w.Close()
		return err
	}
	tf.watcher = w

	go func() {
		for {
			select {
			case <-tf.done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == tf.path && ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
					tf.reload()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				tf.log.Debug("token watch error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (tf *TokenFile) Close() {
	close(tf.done)
	if tf.watcher != nil {
		tf.watcher.Close()
	}
}

func (tf *TokenFile) reload() {
	raw, err := os.ReadFile(tf.path)
	token := ""
	if err == nil {
		token = strings.TrimSpace(string(raw))
	}
	if token != "" && expired(token) {
		tf.log.Debug("token on disk is expired; treating as missing")
		token = ""
	}

	tf.mu.Lock()
	tf.token = token
	tf.mu.Unlock()
}

// expired reports whether a JWT's exp claim is in the past. The signature is
// not verified here; the backend is the authority. Tokens that do not parse
// as JWTs pass through unchanged.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
