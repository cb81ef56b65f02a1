package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/records"
	"github.com/rs/zerolog/log"
)

// fail turns a backend failure into user-visible notices and returns it
// wrapped with the action that failed. A field rejection yields one notice
// per field; anything else yields a single notice.
func fail(ctx context.Context, n notice.Notifier, err error, format string, args ...any) error {
	action := fmt.Sprintf(format, args...)

	var verr *records.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			n.Notify(ctx, notice.FieldError(f.Field, f.Message))
		}
	} else {
		n.Notify(ctx, notice.Error("Failed to "+action))
	}

	log.Error().Err(err).Str("action", action).Msg("record call failed")
	return fmt.Errorf("%s: %w", action, err)
}

func notifierOrDiscard(n notice.Notifier) notice.Notifier {
	if n == nil {
		return notice.Discard
	}
	return n
}
