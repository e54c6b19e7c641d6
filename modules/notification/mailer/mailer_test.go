package mailer

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"book-my-session/core/config"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvite() Invite {
	start := time.Date(2030, 1, 7, 3, 30, 0, 0, time.UTC)
	return Invite{
		UID:         "BMS-7K2QX9PA@book-my-session",
		Title:       "Session with Ana Tester",
		Description: "Booking reference BMS-7K2QX9PA",
		Start:       start,
		End:         start.Add(time.Hour),
		Organizer:   mail.Address{Name: "Ana Tester", Address: "ana@example.com"},
		Attendees: []mail.Address{
			{Name: "Bo Tester", Address: "bo@example.com"},
			{Name: "Ana Tester", Address: "ana@example.com"},
		},
		Stamp: start.Add(-24 * time.Hour),
	}
}

func TestBuildInvite(t *testing.T) {
	att, err := BuildInvite(testInvite())
	require.NoError(t, err)
	assert.Equal(t, "invite.ics", att.Filename)
	assert.Equal(t, InviteContentType, att.ContentType)
	assert.Contains(t, string(att.Data), "METHOD:REQUEST")

	cal, err := ics.ParseCalendar(bytes.NewReader(att.Data))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	evt := events[0]
	assert.Equal(t, "Session with Ana Tester", evt.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "BMS-7K2QX9PA@book-my-session", evt.GetProperty(ics.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "20300107T033000Z", evt.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20300107T043000Z", evt.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "mailto:ana@example.com", evt.GetProperty(ics.ComponentPropertyOrganizer).Value)

	var attendees []string
	for _, prop := range evt.Properties {
		if prop.IANAToken == string(ics.ComponentPropertyAttendee) {
			attendees = append(attendees, prop.Value)
		}
	}
	assert.ElementsMatch(t, []string{"mailto:bo@example.com", "mailto:ana@example.com"}, attendees)
}

func TestBuildInviteRejects(t *testing.T) {
	in := testInvite()
	in.UID = ""
	_, err := BuildInvite(in)
	assert.Error(t, err)

	in = testInvite()
	in.End = in.Start
	_, err = BuildInvite(in)
	assert.Error(t, err)
}

func TestNewMsg(t *testing.T) {
	invite, err := BuildInvite(testInvite())
	require.NoError(t, err)

	from := mail.Address{Name: "Book My Session", Address: "noreply@example.com"}
	msg := Message{
		To:          mail.Address{Name: "Bo Tester", Address: "bo@example.com"},
		Subject:     "Your session with Ana Tester is confirmed (BMS-7K2QX9PA)",
		Body:        "Hello Bo,\nReference: BMS-7K2QX9PA\n",
		Attachments: []Attachment{invite},
	}

	m, err := newMsg(from, msg, time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(&raw)
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, msg.Subject, subject)

	to, err := parsed.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "bo@example.com", to[0].Address)

	sender, err := parsed.Header.AddressList("From")
	require.NoError(t, err)
	require.Len(t, sender, 1)
	assert.Equal(t, "noreply@example.com", sender[0].Address)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])

	text, err := reader.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text.Header.Get("Content-Type"), "text/plain"))
	body, err := io.ReadAll(text)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Reference: BMS-7K2QX9PA")

	attachment, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "invite.ics", attachment.FileName())
	assert.True(t, strings.HasPrefix(attachment.Header.Get("Content-Type"), "text/calendar"))
	assert.Equal(t, "base64", strings.ToLower(attachment.Header.Get("Content-Transfer-Encoding")))

	encoded, err := io.ReadAll(attachment)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(string(encoded)), ""))
	require.NoError(t, err)
	assert.Equal(t, invite.Data, decoded)

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewMsgRequiresRecipient(t *testing.T) {
	_, err := newMsg(mail.Address{Address: "noreply@example.com"}, Message{Subject: "x"}, time.Now())
	assert.Error(t, err)
}

func TestNewSMTPMailerRequiresHost(t *testing.T) {
	_, err := NewSMTPMailer(config.MailConfig{SMTPPort: 587, From: "noreply@example.com"})
	assert.Error(t, err)
}
