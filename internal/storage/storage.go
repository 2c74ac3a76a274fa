package storage

import (
	"context"
	"io"

	"github.com/shikhoron/qna-service/internal/utils"
)

// ObjectStore relays binary payloads to the external image/file host. Only
// the returned URL is persisted on owning records.
type ObjectStore interface {
	// Upload stores the payload under the given folder and returns the
	// public URL of the stored object.
	Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error)

	// Delete removes a previously uploaded object by its public URL.
	// Unknown or foreign URLs are ignored without error.
	Delete(ctx context.Context, url string) error
}

// CleanupResult records one best-effort deletion attempt during a cascade.
type CleanupResult struct {
	URL string
	Err error
}

// BestEffortDelete attempts to remove every URL from the store. Failures are
// logged and collected, never propagated: the enclosing record deletion must
// always complete.
func BestEffortDelete(ctx context.Context, store ObjectStore, logger utils.Logger, urls []string) []CleanupResult {
	results := make([]CleanupResult, 0, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		err := store.Delete(ctx, url)
		if err != nil {
			logger.Warn("Failed to delete stored object", "url", url, "error", err)
		}
		results = append(results, CleanupResult{URL: url, Err: err})
	}
	return results
}
