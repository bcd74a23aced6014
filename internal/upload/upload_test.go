package upload

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// save reads and writes in one step, as the handlers do.
func save(t *testing.T, s *Store, kind string, ownerID int64, data []byte) (string, error) {
	t.Helper()
	img, err := Read(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return s.Write(kind, ownerID, img)
}

func TestWrite_StoresImage(t *testing.T) {
	s := NewStore(t.TempDir())

	url, err := save(t, s, KindProfilePicture, 7, pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/profile-pictures/profile-7-"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	onDisk := filepath.Join(s.Root(), strings.TrimPrefix(url, URLPrefix))
	got, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)
}

func TestRead_Rejects(t *testing.T) {
	_, err := Read(strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxBytes)...)
	_, err = Read(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = save(t, NewStore(t.TempDir()), "avatars", 1, pngHeader)
	assert.Error(t, err)
}

func TestDecodeDataURL(t *testing.T) {
	s := NewStore(t.TempDir())

	img, err := DecodeDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader))
	require.NoError(t, err)
	url, err := s.Write(KindProviderPhoto, 3, img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/provider-photos/provider-3-"), url)

	_, err = DecodeDataURL("data:image/png,rawbytes")
	assert.ErrorIs(t, err, ErrBadDataURL)
	_, err = DecodeDataURL("data:image/png;base64,!!!")
	assert.ErrorIs(t, err, ErrBadDataURL)
	_, err = DecodeDataURL("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrBadDataURL)

	assert.True(t, IsDataURL("data:image/gif;base64,R0lG"))
	assert.False(t, IsDataURL("/uploads/x.png"))
}

func TestRemove(t *testing.T) {
	s := NewStore(t.TempDir())
	url, err := save(t, s, KindProfilePicture, 2, pngHeader)
	require.NoError(t, err)

	require.NoError(t, s.Remove(url))
	_, err = os.Stat(filepath.Join(s.Root(), strings.TrimPrefix(url, URLPrefix)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(url))
	assert.NoError(t, s.Remove("/etc/passwd"))
	assert.NoError(t, s.Remove("/uploads/../../etc/passwd"))
}

func TestReadThenWrite(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := DecodeDataURL("data:image/png;base64,aGVsbG8gd29ybGQ=")
	assert.ErrorIs(t, err, ErrNotImage)

	img, err := Read(bytes.NewReader(pngHeader))
	require.NoError(t, err)
	entries, _ := os.ReadDir(s.Root())
	assert.Empty(t, entries, "nothing written before Write")

	url, err := s.Write(KindProviderPhoto, 11, img)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/provider-photos/provider-11-"), url)

	_, err = s.Write(KindProviderPhoto, 11, Image{})
	assert.ErrorIs(t, err, ErrNotImage)
}
