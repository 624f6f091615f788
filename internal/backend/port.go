// Package backend defines the capability tinychat needs from a text-generation
// service, independent of the transport used to reach it.
package backend

import "context"

// Port sends prompts to a text-generation backend.
//
// Send blocks until the reply arrives or the call fails. Failures match exactly
// one of ErrUnreachable, ErrRejected or ErrProtocol. Timeouts are the
// implementation's responsibility.
type Port interface {
	Send(ctx context.Context, prompt, model string) (string, error)
	// SetActiveModel records model as the default for later calls. It is local
	// bookkeeping and cannot fail.
	SetActiveModel(model string)
}
