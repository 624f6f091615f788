package models

import (
	"context"
	"errors"

	"github.com/dohr-michael/tinychat/internal/backend"
)

// classify maps an SDK error onto the backend taxonomy. Errors raised by
// classifyingTransport keep their kind whatever the SDK wrapped them in.
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}

	var be *backend.Error
	if errors.As(err, &be) {
		return be
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return backend.Unreachable(provider, err)
	}

	return backend.Protocol(provider, "", err)
}
