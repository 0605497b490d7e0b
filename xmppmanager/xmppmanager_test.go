package xmppmanager

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gosrc.io/xmpp/stanza"
)

func TestBuildTextStanza(t *testing.T) {
	msg, ok := BuildStanza(XmppTextMessage("I will be thirsty soon!"))
	require.True(t, ok)
	require.Equal(t, "I will be thirsty soon!", msg.Body)
}

func TestBuildGifStanza(t *testing.T) {
	msg, ok := BuildStanza(XmppGifMessage("https://media.giphy.com/x.mp4"))
	require.True(t, ok)
	require.Len(t, msg.Extensions, 1)
	require.Equal(t, "https://media.giphy.com/x.mp4", msg.Extensions[0].(stanza.OOB).URL)
}

func TestBuildUnknownStanza(t *testing.T) {
	_, ok := BuildStanza(42)
	require.False(t, ok)
}

func TestHandleXmppMessage(t *testing.T) {
	in := make(chan XmppInMessage, 2)
	x := XmppClient{XmppMessageInChannel: in}

	x.HandleXmppMessage(nil, stanza.Message{Attrs: stanza.Attrs{From: "me@example.com/phone"}, Body: "status"})
	x.HandleXmppMessage(nil, stanza.Message{Attrs: stanza.Attrs{From: "me@example.com/phone"}}) // typing notification
	x.HandleXmppMessage(nil, stanza.Presence{})

	require.Len(t, in, 1)
	require.Equal(t, XmppInMessage{From: "me@example.com/phone", Body: "status"}, <-in)
}
