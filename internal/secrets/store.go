// Package secrets keeps student service tokens on disk so they do not have to
// live in config.toml or the shell environment.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const fileName = "tokens.json"

// ErrNotFound is returned when no token is stored for an endpoint.
var ErrNotFound = errors.New("token not found")

// TokenStore is a per-user file (0600) of AES-GCM sealed tokens keyed by
// API host. It obfuscates; it is not an OS keychain.
type TokenStore struct {
	Dir string
}

type tokenFile struct {
	Tokens map[string]string `json:"tokens"` // host -> base64(nonce|ciphertext)
}

// DefaultStore lives under the user config dir.
func DefaultStore() (*TokenStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("user config dir: %w", err)
	}
	return &TokenStore{Dir: filepath.Join(dir, "studentadmin")}, nil
}

func (s *TokenStore) Save(baseURL, token string) error {
	host, err := hostKey(baseURL)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	tf, err := s.load()
	if err != nil {
		return err
	}
	sealed, err := seal([]byte(token))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	tf.Tokens[host] = base64.StdEncoding.EncodeToString(sealed)
	return s.save(tf)
}

func (s *TokenStore) Fetch(baseURL string) (string, error) {
	host, err := hostKey(baseURL)
	if err != nil {
		return "", err
	}
	tf, err := s.load()
	if err != nil {
		return "", err
	}
	enc, ok := tf.Tokens[host]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	plain, err := open(raw)
	if err != nil {
		return "", fmt.Errorf("open token: %w", err)
	}
	return string(plain), nil
}

// Delete is a no-op when nothing is stored for baseURL.
func (s *TokenStore) Delete(baseURL string) error {
	host, err := hostKey(baseURL)
	if err != nil {
		return err
	}
	tf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := tf.Tokens[host]; !ok {
		return nil
	}
	delete(tf.Tokens, host)
	return s.save(tf)
}

func hostKey(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid api url %q", baseURL)
	}
	return strings.ToLower(u.Host), nil
}

func (s *TokenStore) path() string { return filepath.Join(s.Dir, fileName) }

func (s *TokenStore) load() (tokenFile, error) {
	tf := tokenFile{Tokens: map[string]string{}}
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return tf, nil
		}
		return tf, fmt.Errorf("read token file: %w", err)
	}
	if err := json.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("parse token file: %w", err)
	}
	if tf.Tokens == nil {
		tf.Tokens = map[string]string{}
	}
	return tf, nil
}

func (s *TokenStore) save(tf tokenFile) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("mkdir token dir: %w", err)
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.path())
}

func masterKey() []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf("studentadmin-%s-%s", runtime.GOOS, os.Getenv("USER"))))
	return sum[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func seal(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func open(sealed []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, body := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
