package notification

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Message is a rendered email.
type Message struct {
	To        string
	CC        string
	Subject   string
	PlainBody string
	HTMLBody  string
}

var htmlPolicy = bluemonday.UGCPolicy()

// Render turns an assignment job into the email sent to the developer.
func Render(job Job) Message {
	t := job.Ticket
	subject := t.EmailSubject
	if subject == "" {
		subject = "N/A"
	}

	plain := fmt.Sprintf(`Dear Team,

A new Change Request (CR) has been received and assigned.
Please find the details below:

Ticket No: %s
Customer: %s
Module: %s
Priority: %s
Support Engineer: %s
Developer: %s
Subject: %s

Original Message:
%s

Please review the request and take appropriate action at the earliest.

Regards,
CR Automation System`,
		job.TicketNumber, t.Customer, t.Module, t.Priority, t.SEName, t.Developer, subject, t.Description)

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<p>Dear Team,</p>")
	b.WriteString("<p>A new Change Request (CR) has been received and assigned.</p>")
	b.WriteString("<table>")
	for _, row := range [][2]string{
		{"Ticket No", job.TicketNumber},
		{"Customer", t.Customer},
		{"Module", t.Module},
		{"Priority", string(t.Priority)},
		{"Support Engineer", t.SEName},
		{"Developer", t.Developer},
		{"Subject", subject},
	} {
		fmt.Fprintf(&b, "<tr><th>%s</th><td>%s</td></tr>", row[0], html.EscapeString(row[1]))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<pre>%s</pre>", html.EscapeString(t.Description))
	b.WriteString("<p>Regards,<br>CR Automation System</p>")
	b.WriteString("</body></html>")

	return Message{
		To:        job.To,
		CC:        job.CC,
		Subject:   fmt.Sprintf("New CR Assigned - Ticket %s", job.TicketNumber),
		PlainBody: plain,
		HTMLBody:  htmlPolicy.Sanitize(b.String()),
	}
}
