package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/apperr"
	"cityconnect/internal/media/sniffer"
)

const imageField = "image"

// saveImage stores the optional image part of a multipart request and
// returns its name, or "" when the request carries no image.
func (h HandlerSet) saveImage(c *gin.Context) (string, error) {
	header, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Validation("image upload could not be read")
	}

	file, err := header.Open()
	if err != nil {
		return "", apperr.Validation("image upload could not be read")
	}
	defer file.Close()

	declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header))
	if declared == "application/octet-stream" {
		declared = ""
	}

	image, err := h.svc.Uploads.Save(c.Request.Context(), file, header.Filename, declared)
	if err != nil {
		return "", err
	}
	return image.Name, nil
}

func (h HandlerSet) ServeUpload(c *gin.Context) {
	rc, contentType, err := h.svc.Uploads.Open(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control":          "public, max-age=86400, immutable",
		"X-Content-Type-Options": "nosniff",
	})
}
