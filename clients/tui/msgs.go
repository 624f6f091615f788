package tui

import "github.com/dohr-michael/tinychat/internal/chat"

// replyMsg carries the outcome of a backend call back to the loop.
type replyMsg struct {
	turn  chat.Turn
	reply string
	err   error
}
