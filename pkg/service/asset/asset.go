// Package asset stores images uploaded for image fields
package asset

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// MaxSize is the largest accepted upload
const MaxSize = 10 << 20

// DefaultBaseURL is where the HTTP server exposes stored assets
const DefaultBaseURL = "/api/assets/"

var (
	ErrNotFound          = goerr.New("asset not found")
	ErrInvalidName       = goerr.New("invalid asset name")
	ErrUnsupportedFormat = goerr.New("unsupported asset format")
)

const (
	NameKey        = "name"
	ContentTypeKey = "content_type"
	BucketKey      = "bucket"
)

var extensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

var namePattern = regexp.MustCompile(`^[0-9a-f-]{36}\.[a-z]{3,4}$`)

// Sniff returns the content type of data, trusting the declared type only
// when it agrees with the bytes. SVG cannot be sniffed and is rejected.
func Sniff(declared string, data []byte) (string, error) {
	detected := http.DetectContentType(data)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	if _, ok := extensions[detected]; !ok || detected == "image/svg+xml" {
		return "", goerr.Wrap(ErrUnsupportedFormat, "sniff asset",
			goerr.V(ContentTypeKey, declared),
			goerr.V("detected", detected))
	}
	return detected, nil
}

// NewName returns a fresh object name with an extension for contentType
func NewName(contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", goerr.Wrap(ErrUnsupportedFormat, "name asset", goerr.V(ContentTypeKey, contentType))
	}
	return uuid.NewString() + ext, nil
}

// ValidateName rejects names that were not produced by NewName
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return goerr.Wrap(ErrInvalidName, "validate asset name", goerr.V(NameKey, name))
	}
	return nil
}

func urlFor(baseURL, name string) string {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + name
}
