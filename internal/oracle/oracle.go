// Package oracle wraps the external text-generation service.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

// ErrOracle wraps every failure of the generation service: transport,
// authentication, quota or an unusable response.
var ErrOracle = errors.New("generation service error")

// Oracle turns a prompt into a reply. Implementations make a single attempt.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Unavailable returns an Oracle that always fails with reason.
func Unavailable(reason string) Oracle {
	return Func(func(context.Context, string) (string, error) {
		return "", fmt.Errorf("%w: %s", ErrOracle, reason)
	})
}
