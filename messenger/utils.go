/*
 * Helper functions for messenger package
 */

package messenger

import (
	"fmt"
	"net/mail"
	"strings"
)

/*
 * Convert xmppMessage.From to sender because "From" is not necessarily in JID form but one of:
 *	    <user>@<server>.tld/Resource
 *	    <server>.tld
 *	    <user>@<server>.tld
 */
func senderFromToJID(senderFrom string) (string, error) {
	// net/mail does not accept the resource part, strip it first.
	bare := strings.SplitN(senderFrom, "/", 2)[0]

	senderAddress, err := mail.ParseAddress(bare)
	if err != nil {
		return "", fmt.Errorf("'from' string '%s' cannot be parsed as JID", senderFrom)
	}

	return senderAddress.Address, nil
}
