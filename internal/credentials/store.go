// Package credentials persists the storefront login on disk.
//
// The password is obfuscated with a repeating-key XOR and URL-safe base64.
// This keeps it out of casual view only; it is not encryption and offers no
// protection against anyone holding the key or the file. Prefer a real secret
// manager where one is available.
package credentials

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/guildsync/guildsync/internal/domain/models"
)

var (
	// ErrMissingKey is returned when no obfuscation key is configured.
	ErrMissingKey = errors.New("credentials: obfuscation key is empty")
	// ErrMalformed indicates the credential file does not hold two lines.
	ErrMalformed = errors.New("credentials: malformed credential file")
)

// FileStore reads and writes a two line credential file:
// the username, then the obfuscated password.
type FileStore struct {
	Path string
	Key  string
}

// NewFileStore builds a FileStore.
func NewFileStore(path, key string) *FileStore {
	return &FileStore{Path: path, Key: key}
}

// Exists reports whether the credential file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Read loads and decodes the stored credential.
func (s *FileStore) Read() (models.Credential, error) {
	if s.Key == "" {
		return models.Credential{}, ErrMissingKey
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return models.Credential{}, fmt.Errorf("open credential file %s: %w", s.Path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return models.Credential{}, fmt.Errorf("read credential file %s: %w", s.Path, err)
	}
	if len(lines) < 2 || lines[0] == "" {
		return models.Credential{}, ErrMalformed
	}

	password, err := Decrypt(lines[1], s.Key)
	if err != nil {
		return models.Credential{}, err
	}

	return models.Credential{Username: lines[0], Password: password}, nil
}

// Write obfuscates the password and stores the credential, replacing any previous file.
func (s *FileStore) Write(cred models.Credential) error {
	if s.Key == "" {
		return ErrMissingKey
	}
	if cred.Username == "" {
		return errors.New("credentials: username must not be empty")
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create credential dir %s: %w", dir, err)
		}
	}

	body := cred.Username + "\n" + Encrypt(cred.Password, s.Key)
	if err := os.WriteFile(s.Path, []byte(body), 0o600); err != nil {
		return fmt.Errorf("write credential file %s: %w", s.Path, err)
	}
	return nil
}

// Encrypt XORs each code point of text with the key code point at the same
// position modulo the key length, then encodes the UTF-8 result as URL-safe
// base64.
func Encrypt(text, key string) string {
	return base64.URLEncoding.EncodeToString([]byte(xorRunes(text, key)))
}

// Decrypt reverses Encrypt.
func Decrypt(encoded, key string) (string, error) {
	if key == "" {
		return "", ErrMissingKey
	}
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode password: %v", ErrMalformed, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: password is not valid utf-8", ErrMalformed)
	}
	return xorRunes(string(raw), key), nil
}

func xorRunes(text, key string) string {
	k := []rune(key)
	if len(k) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	i := 0
	for _, r := range text {
		b.WriteRune(r ^ k[i%len(k)])
		i++
	}
	return b.String()
}
