package web

import (
	stdhtml "html"
	"net/mail"
	"net/url"

	vm "github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/studiopanel/internal/application"
	"github.com/ericfisherdev/studiopanel/internal/domain/model"
)

const displayTimeLayout = "Jan 2, 2006 15:04 MST"

func toMailboxViewModel(s application.MailboxStatus, configured bool, csrf string) vm.MailboxViewModel {
	m := vm.MailboxViewModel{
		Configured: configured,
		Connected:  s.Connected,
		Address:    s.MailboxAddress,
		CSRFToken:  csrf,
	}
	if s.Connected {
		m.ExpiresAt = s.ExpiresAt.Local().Format(displayTimeLayout)
	}
	return m
}

func toProjectCards(projects []model.Project) []vm.ProjectCardViewModel {
	cards := make([]vm.ProjectCardViewModel, 0, len(projects))
	for _, p := range projects {
		cards = append(cards, vm.ProjectCardViewModel{
			Name:       p.Name,
			DetailPath: "/projects/" + url.PathEscape(p.ID),
			CreatedAt:  p.CreatedAt.Format("Jan 2, 2006"),
		})
	}
	return cards
}

func toPeople(p model.Project) (clients, contacts []vm.PersonViewModel) {
	clients = make([]vm.PersonViewModel, 0, len(p.Clients))
	for _, c := range p.Clients {
		clients = append(clients, vm.PersonViewModel{Name: c.Name, Email: c.Email})
	}
	contacts = make([]vm.PersonViewModel, 0, len(p.Contacts))
	for _, c := range p.Contacts {
		contacts = append(contacts, vm.PersonViewModel{Name: c.Name, Role: c.Role, Email: c.Email})
	}
	return clients, contacts
}

// toRecordViewModels converts correspondence records. Bodies are rendered
// only when withBody is set, with the snippet standing in for a message that
// has no plain-text body. List views show the snippet instead.
func toRecordViewModels(records []model.CorrespondenceRecord, withBody bool) []vm.RecordViewModel {
	out := make([]vm.RecordViewModel, 0, len(records))
	for _, r := range records {
		rv := vm.RecordViewModel{
			From:       r.From,
			To:         r.To,
			Subject:    subjectOrPlaceholder(r.Subject),
			Date:       displayDate(r.Date),
			Snippet:    stdhtml.UnescapeString(r.Snippet),
			Direction:  string(r.Direction),
			ThreadPath: "/threads/" + url.PathEscape(r.ThreadID),
		}
		if withBody {
			rv.BodyHTML = RenderMessageBody(r.Body)
			if rv.BodyHTML == "" {
				rv.BodyHTML = RenderMessageBody(rv.Snippet)
			}
		}
		out = append(out, rv)
	}
	return out
}

func subjectOrPlaceholder(s string) string {
	if s == "" {
		return "(no subject)"
	}
	return s
}

// displayDate reformats an RFC 5322 Date header; unparseable values are shown
// verbatim.
func displayDate(raw string) string {
	t, err := mail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(displayTimeLayout)
}
