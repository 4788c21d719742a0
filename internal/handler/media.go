package handler

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Yashh918/WatchHaven/internal/storage"
)

// uploadFile streams one multipart file into the object store under
// the given kind prefix.
func uploadFile(ctx context.Context, media MediaStore, kind string, fh *multipart.FileHeader) (storage.Asset, error) {
	f, err := fh.Open()
	if err != nil {
		return storage.Asset{}, err
	}
	defer f.Close()
	return media.Put(ctx, kind, fh.Filename, fh.Header.Get("Content-Type"), f)
}

// mediaContext bounds an upload so a stalled transfer cannot hold the
// request forever.
func mediaContext(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

// scheduleCleanup queues stale object keys for deletion. Rows are
// always committed before their old assets are queued, so a failed
// publish only leaks storage; it never loses data. Failures are logged
// and swallowed.
func scheduleCleanup(c echo.Context, clean CleanupScheduler, reason string, keys ...string) {
	if clean == nil {
		return
	}
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			filtered = append(filtered, k)
		}
	}
	if len(filtered) == 0 {
		return
	}
	if err := clean.PublishCleanup(c.Request().Context(), filtered, reason); err != nil {
		c.Logger().Warnf("media cleanup: publish failed (%s): %v", reason, err)
	}
}
