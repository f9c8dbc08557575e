package models

import "time"

// Image describes an uploaded file. Content items only keep Name.
type Image struct {
	Name        string
	ContentType string
	SizeBytes   int64
}

// StoredImage is an entry as listed by an image store.
type StoredImage struct {
	Name       string
	SizeBytes  int64
	ModifiedAt time.Time
}
