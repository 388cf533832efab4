package media

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"time"
)

// Blob is an uploaded image kept in the database.
type Blob struct {
	ID          string    `json:"id"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MaxBlobSize caps a single upload.
const MaxBlobSize = 5 << 20

// URL is where a stored blob is served from.
func URL(id string) string {
	return "/api/v1/media/" + id
}

// SafeImageURL accepts data:image/ URLs and absolute http(s) URLs.
// Anything else, such as javascript:, data:text/html or relative paths, is
// rejected.
func SafeImageURL(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "data:") {
		return strings.HasPrefix(lower, "data:image/")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

var errNotDataURL = errors.New("not a base64 data URL")

// DecodeDataURL splits "data:<type>;base64,<payload>" into its content type
// and bytes.
func DecodeDataURL(raw string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), "data:")
	if !ok {
		return "", nil, errNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, errNotDataURL
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return contentType, data, nil
}
