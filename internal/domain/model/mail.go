package model

// MessageRef is one hit of a provider-side message search.
type MessageRef struct {
	ID       string
	ThreadID string
}

// MailHeader is a single message header as reported by the provider.
type MailHeader struct {
	Name  string
	Value string
}

// MailPart is a node of the provider's message payload tree. BodyData is the
// body exactly as the provider returned it (base64 encoded).
type MailPart struct {
	MimeType string
	Headers  []MailHeader
	BodyData string
	Parts    []MailPart
}

// MailMessage is a provider message in a provider-neutral shape.
type MailMessage struct {
	ID       string
	ThreadID string
	Snippet  string
	Payload  MailPart
}

// Direction tells whether a message was sent from the connected mailbox.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// CorrespondenceRecord is the flat message shape handed to the UI. It is built
// fresh on every fetch and never persisted.
type CorrespondenceRecord struct {
	ID        string
	ThreadID  string
	From      string
	To        string
	Subject   string
	Date      string
	Snippet   string
	Body      string
	Direction Direction
}
