package models

import "time"

// StoredFile describes one encrypted object in the file vault.
type StoredFile struct {
	Key        string
	Name       string
	Size       int64
	UploadedAt time.Time
}
