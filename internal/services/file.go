package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/securefin/internal/activity"
	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/cryptox"
	"github.com/dmitrijs2005/securefin/internal/logging"
	"github.com/dmitrijs2005/securefin/internal/models"
	"github.com/dmitrijs2005/securefin/internal/objectstore"
	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted plaintext upload.
const MaxUploadSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".txt":  true,
	".pdf":  true,
}

// FileService is the per-user encrypted file vault. Objects are stored under
// "<escaped username>/<uuid>/<file name>" and hold cryptox blobs.
type FileService struct {
	store    objectstore.Store
	cipher   *cryptox.Cipher
	activity activity.Sink
	log      logging.Logger
	newID    func() string
}

// NewFileService wires a FileService. A nil store disables the vault: every
// method then returns common.ErrorDisabled.
func NewFileService(store objectstore.Store, c *cryptox.Cipher, sink activity.Sink, log logging.Logger) *FileService {
	return &FileService{
		store:    store,
		cipher:   c,
		activity: sink,
		log:      log,
		newID:    uuid.NewString,
	}
}

func (s *FileService) Enabled() bool { return s.store != nil }

func userPrefix(username string) string {
	return url.PathEscape(username) + "/"
}

// cleanName reduces a user-supplied file name to its base name.
func cleanName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("%w: empty file name", common.ErrorValidation)
	}
	return base, nil
}

// Upload encrypts data and stores it for username. Files over MaxUploadSize
// or with an extension other than .jpg, .jpeg, .png, .txt and .pdf are
// rejected with common.ErrorValidation.
func (s *FileService) Upload(ctx context.Context, username, name string, data []byte) (*models.StoredFile, error) {
	if !s.Enabled() {
		return nil, common.ErrorDisabled
	}

	base, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if ext := strings.ToLower(path.Ext(base)); !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: file type %q is not allowed", common.ErrorValidation, ext)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", common.ErrorValidation, MaxUploadSize)
	}

	blob, err := s.cipher.Encrypt(data)
	if err != nil {
		s.log.Error(ctx, "encrypt upload", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	key := userPrefix(username) + s.newID() + "/" + base
	if err := s.store.Put(ctx, key, blob); err != nil {
		s.log.Error(ctx, "store upload", "username", username, "key", key, "error", err)
		return nil, common.ErrorStorage
	}

	if s.activity != nil {
		if err := s.activity.Record(ctx, username, activity.ActionFileUpload); err != nil {
			s.log.Warn(ctx, "activity log write failed", "action", activity.ActionFileUpload, "error", err)
		}
	}

	return &models.StoredFile{
		Key:        key,
		Name:       base,
		Size:       int64(len(data)),
		UploadedAt: time.Now().UTC(),
	}, nil
}

// List returns the files of username.
func (s *FileService) List(ctx context.Context, username string) ([]*models.StoredFile, error) {
	if !s.Enabled() {
		return nil, common.ErrorDisabled
	}

	objs, err := s.store.List(ctx, userPrefix(username))
	if err != nil {
		s.log.Error(ctx, "list uploads", "username", username, "error", err)
		return nil, common.ErrorStorage
	}

	files := make([]*models.StoredFile, 0, len(objs))
	for _, o := range objs {
		files = append(files, &models.StoredFile{
			Key:        o.Key,
			Name:       path.Base(o.Key),
			Size:       max(o.Size-cryptox.Overhead, 0),
			UploadedAt: o.LastModified,
		})
	}
	return files, nil
}

// Download returns the decrypted content of key. Keys outside the caller's
// own prefix are reported as common.ErrorNotFound.
func (s *FileService) Download(ctx context.Context, username, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, common.ErrorDisabled
	}
	if !ownsKey(username, key) {
		return nil, common.ErrorNotFound
	}

	blob, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.log.Error(ctx, "fetch upload", "username", username, "key", key, "error", err)
		return nil, common.ErrorStorage
	}

	data, err := s.cipher.Decrypt(blob)
	if err != nil {
		s.log.Warn(ctx, "upload did not decrypt", "username", username, "key", key, "error", err)
		return nil, common.ErrorDecryption
	}
	return data, nil
}

// ShareURL returns a time-limited link to the stored (encrypted) object.
func (s *FileService) ShareURL(ctx context.Context, username, key string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", common.ErrorDisabled
	}
	if !ownsKey(username, key) {
		return "", common.ErrorNotFound
	}

	u, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		s.log.Error(ctx, "presign upload", "username", username, "key", key, "error", err)
		return "", common.ErrorStorage
	}
	return u, nil
}

func ownsKey(username, key string) bool {
	rest, ok := strings.CutPrefix(key, userPrefix(username))
	return ok && rest != "" && !strings.Contains(key, "..")
}
