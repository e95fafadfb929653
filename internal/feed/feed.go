package feed

import (
	"context"

	"healthchain/internal/vitals"
)

// Source produces vital-sign readings. Implementations may be backed by a
// real device integration or a randomized generator; callers must never
// substitute one for the other implicitly.
type Source interface {
	Next(ctx context.Context) (vitals.Reading, error)
}
