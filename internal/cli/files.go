package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/securefin/internal/common"
	"github.com/dmitrijs2005/securefin/internal/services"
)

// shareTTL is the lifetime of links printed by the share command.
const shareTTL = 15 * time.Minute

func (a *App) vaultEnabled() bool {
	if a.files == nil || !a.files.Enabled() {
		a.say(msgVaultDisabled)
		return false
	}
	return true
}

// Upload reads a local file, encrypts it and stores it in the vault.
func (a *App) Upload(ctx context.Context, path string) error {
	if !a.vaultEnabled() {
		return common.ErrorDisabled
	}

	info, err := os.Stat(path)
	if err != nil {
		a.say("Cannot read " + path + ".")
		return err
	}
	if info.IsDir() || info.Size() > services.MaxUploadSize {
		err := fmt.Errorf("%w: not a regular file of at most %d bytes", common.ErrorValidation, services.MaxUploadSize)
		return a.fail(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		a.say("Cannot read " + path + ".")
		return err
	}

	f, err := a.files.Upload(ctx, a.userName(), filepath.Base(path), data)
	if err != nil {
		return a.fail(err)
	}

	a.say(fmt.Sprintf("Uploaded %s (%d bytes) as %s", f.Name, f.Size, f.Key))
	return nil
}

// Files lists the user's stored files.
func (a *App) Files(ctx context.Context) error {
	if !a.vaultEnabled() {
		return common.ErrorDisabled
	}

	files, err := a.files.List(ctx, a.userName())
	if err != nil {
		return a.fail(err)
	}
	if len(files) == 0 {
		a.say("No files yet.")
		return nil
	}

	for _, f := range files {
		a.say(fmt.Sprintf("%-60s %10d  %s", f.Key, f.Size, f.UploadedAt.Local().Format(time.DateTime)))
	}
	return nil
}

// Download decrypts a stored file into dest, which must not exist yet.
func (a *App) Download(ctx context.Context, key, dest string) error {
	if !a.vaultEnabled() {
		return common.ErrorDisabled
	}

	data, err := a.files.Download(ctx, a.userName(), key)
	if err != nil {
		return a.fail(err)
	}
	defer common.WipeByteArray(data)

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		a.say("Cannot create " + dest + ".")
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		a.say("Cannot write " + dest + ".")
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.say(fmt.Sprintf("Saved %d bytes to %s", len(data), dest))
	return nil
}

// Share prints a presigned link to the stored (still encrypted) object.
func (a *App) Share(ctx context.Context, key string) error {
	if !a.vaultEnabled() {
		return common.ErrorDisabled
	}

	url, err := a.files.ShareURL(ctx, a.userName(), key, shareTTL)
	if err != nil {
		return a.fail(err)
	}

	a.say(fmt.Sprintf("Link valid for %s (downloads the encrypted file):", shareTTL))
	a.say(url)
	return nil
}
