package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/upload"
)

// maxMultipartBody is the image cap plus room for the text fields.
const maxMultipartBody = upload.MaxBytes + 1<<20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeServiceError(w, r, upload.ErrTooLarge)
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return false
	}
	return true
}

// formString returns nil when the field is absent so that partial updates
// leave it unchanged.
func formString(r *http.Request, key string) *string {
	if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}

// formImage reads and checks the file posted under field. It returns nil
// when the field is absent.
func formImage(r *http.Request, field string) (*upload.Image, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := upload.Read(file)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// inlineImage decodes v when it holds a base64 data URL. Any other value
// yields nil.
func inlineImage(v *string) (*upload.Image, error) {
	if v == nil || !upload.IsDataURL(*v) {
		return nil, nil
	}
	img, err := upload.DecodeDataURL(*v)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// writeImage stores img, when there is one, and returns its URL.
func writeImage(images ImageStore, kind string, ownerID int64, img *upload.Image) (*string, error) {
	if img == nil {
		return nil, nil
	}
	url, err := images.Write(kind, ownerID, *img)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

// dropReplaced removes the stored file behind prev once a write has moved the
// resource to a different picture or cleared it.
func dropReplaced(r *http.Request, images ImageStore, prev, next *string) {
	if prev == nil || *prev == "" || (next != nil && *next == *prev) {
		return
	}
	if err := images.Remove(*prev); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("url", *prev).Msg("remove replaced upload")
	}
}
