package pages_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/studiopanel/internal/adapter/driving/web/viewmodel"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout_WrapsBody(t *testing.T) {
	body := render(t, templates.Layout("A & B", pages.Error(vm.ErrorViewModel{Title: "Oops", Message: "broken"})))

	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "<title>A &amp; B</title>")
	assert.Contains(t, body, `<main class="content"><section class="error"><h1>Oops</h1>`)
	assert.Contains(t, body, "</main></body></html>")
}

func TestDashboard_MailboxStates(t *testing.T) {
	tests := []struct {
		name    string
		mailbox vm.MailboxViewModel
		want    []string
		absent  []string
	}{
		{
			name:    "not configured",
			mailbox: vm.MailboxViewModel{},
			want:    []string{"not configured"},
			absent:  []string{`href="/mailbox/connect"`, "Disconnect"},
		},
		{
			name:    "disconnected",
			mailbox: vm.MailboxViewModel{Configured: true},
			want:    []string{"No mailbox connected.", `href="/mailbox/connect"`},
			absent:  []string{"Disconnect"},
		},
		{
			name: "connected",
			mailbox: vm.MailboxViewModel{
				Configured: true, Connected: true, Address: "studio@example.com",
				ExpiresAt: "Jan 13, 2026", CSRFToken: `tok"en`,
			},
			want: []string{
				"<strong>studio@example.com</strong>",
				"valid until Jan 13, 2026",
				`value="tok&#34;en"`,
			},
			absent: []string{`href="/mailbox/connect"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, pages.Dashboard(vm.DashboardViewModel{OwnerEmail: "<me>", Mailbox: tt.mailbox}))

			assert.Contains(t, body, "Signed in as &lt;me&gt;")
			assert.Contains(t, body, "No projects yet.")
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, body, a)
			}
		})
	}
}

func TestProject_RecordList(t *testing.T) {
	body := render(t, pages.Project(vm.ProjectViewModel{
		Name:    "Kitchen",
		Clients: []vm.PersonViewModel{{Name: "Ada", Role: "Owner", Email: "ada@example.com"}},
		Records: []vm.RecordViewModel{{
			From: "ada@example.com", To: "studio@example.com", Subject: "<b>Tiles</b>",
			Date: "Jan 13, 2026", Snippet: "see attached", Direction: "inbound", ThreadPath: "/threads/t1",
		}},
	}))

	assert.Contains(t, body, `<li>Ada <span class="muted">(Owner)</span> <span class="email">ada@example.com</span></li>`)
	assert.Contains(t, body, "None")
	assert.Contains(t, body, `<li class="record" data-direction="inbound"><a href="/threads/t1">`)
	assert.Contains(t, body, "&lt;b&gt;Tiles&lt;/b&gt;")
	assert.Contains(t, body, "ada@example.com &rarr; studio@example.com")
}

func TestProject_NoticeReplacesRecords(t *testing.T) {
	body := render(t, pages.Project(vm.ProjectViewModel{
		Name:         "Kitchen",
		Records:      []vm.RecordViewModel{{Subject: "hidden"}},
		Notice:       "Mailbox connection broken, please reconnect.",
		NeedsConnect: true,
	}))

	assert.Contains(t, body, `<div class="notice">Mailbox connection broken, please reconnect.`)
	assert.Contains(t, body, `href="/mailbox/connect"`)
	assert.NotContains(t, body, "hidden")
}

func TestThread_RendersSanitizedBodyVerbatim(t *testing.T) {
	body := render(t, pages.Thread(vm.ThreadViewModel{
		Subject: "Install date",
		Records: []vm.RecordViewModel{{
			From: "a@example.com", To: "b@example.com", BodyHTML: "<p>Hi <em>there</em></p>", Direction: "outbound",
		}},
	}))

	assert.Contains(t, body, `<article class="record" data-direction="outbound">`)
	assert.Contains(t, body, `<div class="body"><p>Hi <em>there</em></p></div>`)
}

func TestProject_UnsafeThreadURLIsNeutralized(t *testing.T) {
	body := render(t, pages.Project(vm.ProjectViewModel{
		Records: []vm.RecordViewModel{{ThreadPath: "javascript:alert(1)"}},
	}))

	assert.NotContains(t, body, "javascript:")
}
