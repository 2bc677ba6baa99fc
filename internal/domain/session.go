package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat's conversation log. MessageIDs are the
// transport messages it was delivered as, removed at cleanup.
type Message struct {
	Role       Role
	Content    string
	MessageIDs []int
}

// Inbound is a single text event delivered by the transport.
type Inbound struct {
	ChatID    int64
	MessageID int
	UserName  string
	FirstName string
	Text      string
}
