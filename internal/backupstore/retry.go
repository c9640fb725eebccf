package backupstore

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

// retryableWrite writes data to path, retrying transient I/O failures
// with exponential backoff, the same pattern holomush's event dispatcher
// uses around its own fallible I/O.
func retryableWrite(ctx context.Context, fs afero.Fs, path string, data []byte) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(25*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := writeFileAtomic(fs, path, data); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
