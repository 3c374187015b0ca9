package services

import (
	"context"
	"fmt"

	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
)

// BestEffort runs op and logs its failure. A panic inside op is recovered
// and reported as an error, so callers on the page path never blow up.
func BestEffort(ctx context.Context, name string, op func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s: panic: %v", name, rec)
		}
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("operation", name).Msg("Best-effort operation failed")
		}
	}()
	return op(ctx)
}
