package domain

import "context"

type Button struct {
	Text string
	Data string
}

// Reply is what a handler wants shown to the user: text plus optional
// inline button rows.
type Reply struct {
	Text    string
	Buttons [][]Button
}

func TextReply(text string) Reply {
	return Reply{Text: text}
}

// Responder delivers a reply for the event being handled. A new message is
// sent for text events; callback events edit the message that carried the
// button. It returns the transport ids of the messages shown, in order;
// a long reply can span several.
type Responder interface {
	SendOrEdit(ctx context.Context, reply Reply) ([]int, error)
}

// MessageDeleter removes a previously sent message. Failures for messages
// that no longer exist are expected.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// TypingIndicator is implemented by responders that can show a "typing"
// status while a slow reply is produced. The returned func stops it.
type TypingIndicator interface {
	StartTyping(ctx context.Context) context.CancelFunc
}

// ErrorReporter mirrors collaborator failures to an operator channel.
type ErrorReporter interface {
	LogError(err error, where string)
}
