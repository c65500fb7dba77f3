// Package drafts turns exported leads into suggested replies using an
// external text-generation provider. The scan pipeline has no dependency on
// this package and runs fully without a configured provider.
package drafts

import (
	"context"
	"errors"
)

// ErrProvider marks a draft-generation failure. Callers skip the affected
// lead with a warning; one bad row never fails the whole drafts run.
var ErrProvider = errors.New("provider error")

// Generator is the capability the drafts command consumes.
type Generator interface {
	Generate(ctx context.Context, leadText string) (string, error)
}
