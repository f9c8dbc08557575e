// Package sniffer decides whether an upload is one of the accepted image
// formats, looking at the bytes and at the file name together.
package sniffer

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
)

var (
	ErrUnknownType       = errors.New("only jpeg, png and gif images are accepted")
	ErrExtensionMismatch = errors.New("file extension does not match its content")
)

// HeadSize is how many leading bytes Detect needs.
const HeadSize = 3072

type Result struct {
	Type      MediaType
	MIME      string
	Extension string
}

var accepted = map[string]Result{
	"image/jpeg": {Type: TypeJPEG, MIME: "image/jpeg", Extension: "jpg"},
	"image/png":  {Type: TypePNG, MIME: "image/png", Extension: "png"},
	"image/gif":  {Type: TypeGIF, MIME: "image/gif", Extension: "gif"},
}

var extensions = map[string]MediaType{
	".jpg":  TypeJPEG,
	".jpeg": TypeJPEG,
	".png":  TypePNG,
	".gif":  TypeGIF,
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, HeadSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	detected := mimetype.Detect(head)
	result, ok := accepted[detected.String()]
	if !ok {
		return Result{}, ErrUnknownType
	}
	return result, nil
}

// CheckName requires the file name to carry an accepted extension that
// agrees with the detected content.
func CheckName(filename string, result Result) error {
	ext := strings.ToLower(filepath.Ext(filename))
	declared, ok := extensions[ext]
	if !ok {
		return ErrUnknownType
	}
	if declared != result.Type {
		return ErrExtensionMismatch
	}
	return nil
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}

// ContentTypeForName maps a stored file name back to its MIME type.
func ContentTypeForName(name string) string {
	switch extensions[strings.ToLower(filepath.Ext(name))] {
	case TypeJPEG:
		return "image/jpeg"
	case TypePNG:
		return "image/png"
	case TypeGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
