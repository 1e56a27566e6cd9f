// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// MailboxViewModel describes the owner's mailbox connection for the header
// card and the connect/disconnect controls.
type MailboxViewModel struct {
	Configured bool
	Connected  bool
	Address    string
	ExpiresAt  string
	CSRFToken  string
}

// ProjectCardViewModel is one entry of the dashboard project list.
type ProjectCardViewModel struct {
	Name       string
	DetailPath string
	CreatedAt  string
}

// DashboardViewModel holds everything the dashboard page renders.
type DashboardViewModel struct {
	OwnerEmail string
	Mailbox    MailboxViewModel
	Projects   []ProjectCardViewModel
}

// PersonViewModel is a project client or contact.
type PersonViewModel struct {
	Name  string
	Role  string
	Email string
}

// RecordViewModel is one correspondence message. BodyHTML is sanitized and
// only set on thread pages. Direction is "inbound" or "outbound".
type RecordViewModel struct {
	From       string
	To         string
	Subject    string
	Date       string
	Snippet    string
	BodyHTML   string
	Direction  string
	ThreadPath string
}

// ProjectViewModel holds the project detail page: people plus recent mail.
type ProjectViewModel struct {
	Name     string
	Clients  []PersonViewModel
	Contacts []PersonViewModel

	Records    []RecordViewModel
	Message    string
	NoContacts bool

	// Notice is a user-facing problem with the mailbox, shown in place of
	// the record list. NeedsConnect adds a link to the consent flow.
	Notice       string
	NeedsConnect bool
}

// ThreadViewModel holds a full conversation.
type ThreadViewModel struct {
	Subject      string
	Records      []RecordViewModel
	Notice       string
	NeedsConnect bool
}

// ErrorViewModel is rendered for page-level failures.
type ErrorViewModel struct {
	Title   string
	Message string
}
