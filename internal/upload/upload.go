// Package upload stores user supplied images on local disk and hands back the
// URL path they are served under.
package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxBytes = 5 << 20

	URLPrefix = "/uploads/"

	KindProfilePicture = "profile-pictures"
	KindProviderPhoto  = "provider-photos"
)

var (
	ErrTooLarge   = errors.New("image exceeds 5MB")
	ErrNotImage   = errors.New("only image files are allowed")
	ErrBadDataURL = errors.New("malformed data URL")
)

var extensions = map[string]string{
	"image/jpeg":               ".jpg",
	"image/png":                ".png",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/bmp":                ".bmp",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
}

var prefixes = map[string]string{
	KindProfilePicture: "profile",
	KindProviderPhoto:  "provider",
}

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// Image is an upload that passed the size and content checks but is not yet
// on disk.
type Image struct {
	data []byte
	ext  string
}

// Read loads at most MaxBytes from r and accepts it only if it sniffs as an
// image.
func Read(r io.Reader) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxBytes {
		return Image{}, ErrTooLarge
	}

	ctype := http.DetectContentType(data)
	if !strings.HasPrefix(ctype, "image/") {
		return Image{}, ErrNotImage
	}
	return Image{data: data, ext: extensions[ctype]}, nil
}

// DecodeDataURL accepts "data:image/png;base64,...". The declared media type
// is ignored; the decoded bytes are sniffed like any other upload.
func DecodeDataURL(dataURL string) (Image, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return Image{}, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Image{}, ErrBadDataURL
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxBytes+3 {
		return Image{}, ErrTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrBadDataURL
	}
	return Read(bytes.NewReader(raw))
}

// Write stores img for owner under kind and returns its URL path, e.g.
// /uploads/profile-pictures/profile-7-<uuid>.png.
func (s *Store) Write(kind string, ownerID int64, img Image) (string, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return "", fmt.Errorf("unknown upload kind %q", kind)
	}
	if len(img.data) == 0 {
		return "", ErrNotImage
	}

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%d-%s%s", prefix, ownerID, uuid.NewString(), img.ext)
	if err := os.WriteFile(filepath.Join(dir, name), img.data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return URLPrefix + kind + "/" + name, nil
}

func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// Remove deletes the file behind a URL returned by Write. URLs outside the
// upload tree and already missing files are ignored.
func (s *Store) Remove(url string) error {
	rel, ok := strings.CutPrefix(path.Clean(url), URLPrefix)
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
