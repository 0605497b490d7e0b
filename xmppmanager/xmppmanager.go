/*
 * XmppManager: Manages XMPP connection and
 * offers xmppMessageChannel for sending various types of XMPP Messages:
 * 		- XmppTextMessage or
 * 		- XmppGifMessage
 */

package xmppmanager

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"gosrc.io/xmpp"
	"gosrc.io/xmpp/stanza"

	"thomas-leister.de/plantforecast/configmanager"
)

type XmppTextMessage string

type XmppGifMessage string

type XmppInMessage struct {
	From string
	Body string
}

type XmppClient struct {
	Host                 string
	Port                 int
	Username             string
	Password             string
	Recipients           []string
	XmppMessageInChannel chan<- XmppInMessage
}

func (x *XmppClient) HandleXmppMessage(s xmpp.Sender, p stanza.Packet) {
	msg, ok := p.(stanza.Message)
	if !ok {
		log.Debugf("XMPP: Ignoring packet: %T", p)
		return
	}

	// Just feed messages with Body into messenger responder. Not "typing" notifications etc.
	if msg.Body != "" {
		x.XmppMessageInChannel <- XmppInMessage{From: msg.From, Body: msg.Body}
	}
}

func (x *XmppClient) XmppErrorHandler(err error) {
	log.Errorf("XMPP: %v", err)
}

func (x *XmppClient) Init(config *configmanager.Config) {
	x.Host = config.Xmpp.Host
	x.Port = config.Xmpp.Port
	x.Username = config.Xmpp.Username
	x.Password = config.Xmpp.Password
	x.Recipients = config.Xmpp.Recipients
}

/*
 * Turns a message from the out channel into a stanza.
 * Returns false for unknown message types.
 */
func BuildStanza(xmppMessage interface{}) (stanza.Message, bool) {
	switch m := xmppMessage.(type) {
	case XmppTextMessage:
		return stanza.Message{Body: string(m)}, true

	case XmppGifMessage:
		return stanza.Message{
			Extensions: []stanza.MsgExtension{
				stanza.OOB{
					URL:  string(m),
					Desc: "GIF for forecast",
				},
			},
		}, true
	}
	return stanza.Message{}, false
}

/*
 * Connects to the XMPP server and sends every message from xmppMessageOutChannel
 * to all recipients. Returns when the out channel is closed.
 */
func (x *XmppClient) RunXMPPClient(xmppMessageOutChannel <-chan interface{}, xmppMessageInChannel chan<- XmppInMessage) error {
	x.XmppMessageInChannel = xmppMessageInChannel

	xmppClientConfig := xmpp.Config{
		TransportConfiguration: xmpp.TransportConfiguration{
			Address: x.Host + ":" + strconv.Itoa(x.Port),
		},
		Jid:          x.Username,
		Credential:   xmpp.Password(x.Password),
		StreamLogger: nil,
		Insecure:     false,
	}

	router := xmpp.NewRouter()
	router.HandleFunc("message", x.HandleXmppMessage)

	client, err := xmpp.NewClient(&xmppClientConfig, router, x.XmppErrorHandler)
	if err != nil {
		return fmt.Errorf("xmpp client: %w", err)
	}

	// The stream manager takes care of reconnects.
	cm := xmpp.NewStreamManager(client, nil)
	go cm.Run()
	defer cm.Stop()

	// Wait for a new message to send (listen on channel)
	for xmppMessage := range xmppMessageOutChannel {
		xmppMessageStanza, ok := BuildStanza(xmppMessage)
		if !ok {
			log.Errorf("XMPP: Type of message to send is unknown: %T", xmppMessage)
			continue
		}

		// For each recipient: Set recipient and send message
		for _, recipient := range x.Recipients {
			xmppMessageStanza.Attrs = stanza.Attrs{To: recipient}

			if err := client.Send(xmppMessageStanza); err != nil {
				log.Errorf("XMPP: Could not send stanza to %s: %v", recipient, err)
			}
		}
	}
	return nil
}
