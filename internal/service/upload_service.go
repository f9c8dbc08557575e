package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/rs/zerolog"

	"cityconnect/internal/apperr"
	"cityconnect/internal/ids"
	"cityconnect/internal/media/sniffer"
	"cityconnect/internal/models"
	"cityconnect/internal/storage"
)

// ImagePrefix marks every file written by UploadService. The orphan sweep
// only ever touches names carrying it.
const ImagePrefix = "image-"

var imageNamePattern = regexp.MustCompile(`^image-[0-9A-Za-z]{27}\.(jpg|png|gif)$`)

type UploadService struct {
	store    storage.ImageStore
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadService(store storage.ImageStore, maxBytes int64, log zerolog.Logger) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes, log: log}
}

// Save checks an upload against the image allow-list and the size limit
// and stores it under a fresh name.
func (s *UploadService) Save(ctx context.Context, r io.Reader, filename, declaredType string) (models.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return models.Image{}, apperr.Validation("image exceeds the %d byte limit", s.maxBytes)
	}
	if len(data) == 0 {
		return models.Image{}, apperr.Validation("image is empty")
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return models.Image{}, apperr.Validation("%s", err.Error())
	}
	if err := sniffer.CheckName(filename, result); err != nil {
		return models.Image{}, apperr.Validation("%s", err.Error())
	}
	if declaredType != "" && declaredType != result.MIME {
		return models.Image{}, apperr.Validation("declared type %s does not match %s", declaredType, result.MIME)
	}

	name := fmt.Sprintf("%s%s.%s", ImagePrefix, ids.New(), result.Extension)
	if err := s.store.Put(ctx, name, bytes.NewReader(data), int64(len(data)), result.MIME); err != nil {
		return models.Image{}, fmt.Errorf("store image: %w", err)
	}

	s.log.Debug().Str("image", name).Int("bytes", len(data)).Msg("image stored")
	return models.Image{
		Name:        name,
		ContentType: result.MIME,
		SizeBytes:   int64(len(data)),
	}, nil
}

// Open returns a stored image. Names that could not have been produced by
// Save are reported as missing.
func (s *UploadService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !ValidImageName(name) {
		return nil, "", storage.ErrImageNotFound
	}
	rc, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return rc, sniffer.ContentTypeForName(name), nil
}

// Discard removes an image whose owning content was never created.
func (s *UploadService) Discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrImageNotFound) {
		s.log.Warn().Err(err).Str("image", name).Msg("discard image failed")
	}
}

func ValidImageName(name string) bool {
	return imageNamePattern.MatchString(name)
}
