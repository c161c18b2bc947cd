package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildsync/guildsync/internal/domain/models"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	for _, password := range []string{"", "hunter2", "p@ss word with spaces", "ünïcødé"} {
		encoded := Encrypt(password, "my_key_here")
		decoded, err := Decrypt(encoded, "my_key_here")
		require.NoError(t, err)
		assert.Equal(t, password, decoded)
	}
}

func TestEncryptMatchesKnownValue(t *testing.T) {
	// 'a'^'k' = 0x0a, 'b'^'k' = 0x09
	assert.Equal(t, "Cgk=", Encrypt("ab", "k"))
}

func TestDecryptNonASCIIFromExistingFile(t *testing.T) {
	// written by the earlier tool for "pässwörd" with key "my_key_here"
	const stored = "HcKdLBgSwo8tDA=="

	decoded, err := Decrypt(stored, "my_key_here")
	require.NoError(t, err)
	assert.Equal(t, "pässwörd", decoded)
	assert.Equal(t, stored, Encrypt("pässwörd", "my_key_here"))
}

func TestDecryptNonASCIIKey(t *testing.T) {
	encoded := Encrypt("hunter2", "clé")
	decoded, err := Decrypt(encoded, "clé")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", decoded)
}

func TestDecryptRejectsInvalidUTF8(t *testing.T) {
	_, err := Decrypt("_w==", "k")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("%%%not-base64", "k")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Decrypt("Cgk=", "")
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.txt")
	store := NewFileStore(path, "key")

	assert.False(t, store.Exists())

	want := models.Credential{Username: "author@example.com", Password: "s3cret!"}
	require.NoError(t, store.Write(want))
	assert.True(t, store.Exists())

	got, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret!")
}

func TestFileStoreMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.txt")
	require.NoError(t, os.WriteFile(path, []byte("only-a-username\n"), 0o600))

	_, err := NewFileStore(path, "key").Read()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFileStoreRequiresKey(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "c.txt"), "")
	require.ErrorIs(t, store.Write(models.Credential{Username: "u", Password: "p"}), ErrMissingKey)

	_, err := store.Read()
	require.ErrorIs(t, err, ErrMissingKey)
}
