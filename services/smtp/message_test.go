package smtp

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanishNadar/ttp-tracker/internal/logger"
)

var testIdentity = Identity{
	Name:             "Technology Transition Paradigm",
	Email:            "outreach@ttp.com",
	ReplyTo:          "team@ttp.com",
	UnsubscribeEmail: "unsubscribe@ttp.com",
	Domain:           "ttp.com",
}

func testEmail() *OutboundEmail {
	return &OutboundEmail{
		To:        "ada@acme.com",
		Subject:   "Your domain acme.com is missing DKIM",
		Plain:     "Hi Ada,\n\nplain body",
		HTML:      "<html><body>Hi Ada,<br><br>html body</body></html>",
		MessageID: "6f1c2a",
	}
}

func TestBuildMessage_Headers(t *testing.T) {
	raw, err := BuildMessage(testIdentity, testEmail())
	require.NoError(t, err)

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "Your domain acme.com is missing DKIM", env.GetHeader("Subject"))
	assert.Contains(t, env.GetHeader("From"), "outreach@ttp.com")
	assert.Contains(t, env.GetHeader("From"), "Technology Transition Paradigm")
	assert.Contains(t, env.GetHeader("To"), "ada@acme.com")
	assert.Contains(t, env.GetHeader("Reply-To"), "team@ttp.com")
	assert.Equal(t, "<6f1c2a@ttp.com>", env.GetHeader("Message-ID"))
	assert.Equal(t, "true", env.GetHeader("X-Auto-Generated"))
	assert.Equal(t, "<mailto:unsubscribe@ttp.com?subject=unsubscribe>", env.GetHeader("List-Unsubscribe"))
	assert.True(t, strings.HasPrefix(env.Root.ContentType, "multipart/alternative"))
	assert.Contains(t, env.Text, "plain body")
	assert.Contains(t, env.HTML, "html body")
}

func TestBuildMessage_DefaultsReplyToSender(t *testing.T) {
	from := testIdentity
	from.ReplyTo = ""
	from.UnsubscribeEmail = ""

	raw, err := BuildMessage(from, testEmail())
	require.NoError(t, err)
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Contains(t, env.GetHeader("Reply-To"), "outreach@ttp.com")
	assert.Empty(t, env.GetHeader("List-Unsubscribe"))
}

func TestBuildMessage_Validation(t *testing.T) {
	bad := testEmail()
	bad.To = "nobody"
	_, err := BuildMessage(testIdentity, bad)
	assert.Error(t, err)

	bad = testEmail()
	bad.Subject = ""
	_, err = BuildMessage(testIdentity, bad)
	assert.Error(t, err)

	bad = testEmail()
	bad.MessageID = ""
	_, err = BuildMessage(testIdentity, bad)
	assert.Error(t, err)

	_, err = BuildMessage(testIdentity, nil)
	assert.Error(t, err)
}

func TestDryRunClient_Send(t *testing.T) {
	log := logger.NewAppLogger(nil)
	log.InitLogger()

	client := NewDryRunClient(testIdentity, log)
	assert.NoError(t, client.Send(context.Background(), testEmail()))
}

func TestSMTPClient_ConnectFailure(t *testing.T) {
	log := logger.NewAppLogger(nil)
	log.InitLogger()

	client := NewSMTPClient(ServerConfig{Host: "127.0.0.1", Port: 1, User: "u", Password: "p"}, testIdentity, log)
	err := client.Send(context.Background(), testEmail())
	assert.Error(t, err)
}
