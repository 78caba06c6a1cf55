package transport

import "context"

type UpdateKind string

const (
	UpdateMessage  UpdateKind = "message"
	UpdateCallback UpdateKind = "callback"
)

type Update struct {
	Kind     UpdateKind
	Message  *Message
	Callback *Callback
}

type Message struct {
	ID           int
	ChatID       int64
	FromID       int64
	FromUsername string
	Text         string
	IsCommand    bool
}

type Callback struct {
	ID        string
	FromID    int64
	ChatID    int64
	MessageID int
	Data      string
}

type ChatTarget struct {
	ChatID int64
}

// MessageRef identifies a concrete message, e.g. an archived recitation
// upload that can be forwarded to a subscriber.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// ChatInfo is the subset of chat metadata the delivery engine needs.
type ChatInfo struct {
	Private bool
	Title   string
}

type SendOptions struct {
	ParseMode          string
	DisablePreview     bool
	ReplyMarkupAdapter any // adapter-specific markup (Telegram: *telebot.ReplyMarkup)
}

// Adapter is the messaging collaborator contract. All methods may fail with a
// generic transport error; callers decide what a failure means for them.
type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, opt *SendOptions) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error

	// Forward re-delivers an existing message to a chat.
	Forward(ctx context.Context, to ChatTarget, src MessageRef) error

	// GetChatInfo resolves destination metadata (private vs multi-party).
	GetChatInfo(ctx context.Context, chatID int64) (ChatInfo, error)

	// ListAdministrators returns the user IDs of a chat's administrators.
	ListAdministrators(ctx context.Context, chatID int64) ([]int64, error)

	// BotID is the delivering identity, used for the eligibility check.
	BotID() int64
}
