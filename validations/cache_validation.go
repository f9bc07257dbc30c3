package validations

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainCache "github.com/crossforge/xcodemcp/domains/cache"
	pkgError "github.com/crossforge/xcodemcp/pkg/error"
)

// ValidateSetCacheConfig checks that exactly one duration field is supplied
// and that it is positive. The 1000ms floor is enforced by the caches
// themselves so that direct callers get the same guarantee.
func ValidateSetCacheConfig(ctx context.Context, request domainCache.SetConfigRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.CacheType, validation.Required),
		validation.Field(&request.DurationMs, validation.By(positiveIfSet)),
		validation.Field(&request.DurationMinutes, validation.By(positiveIfSet)),
		validation.Field(&request.DurationHours, validation.By(positiveIfSet)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	supplied := 0
	for _, field := range []*int64{request.DurationMs, request.DurationMinutes, request.DurationHours} {
		if field != nil {
			supplied++
		}
	}
	if supplied != 1 {
		return pkgError.ValidationError("exactly one of duration_ms, duration_minutes or duration_hours must be supplied")
	}

	return nil
}

func positiveIfSet(value any) error {
	ptr, ok := value.(*int64)
	if !ok || ptr == nil {
		return nil
	}
	if *ptr <= 0 {
		return errors.New("must be positive")
	}
	return nil
}
