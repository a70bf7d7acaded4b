package store

import "strings"

const (
	UserServer  = "s.whatsapp.net"
	GroupServer = "g.us"
)

// FormatJID turns a phone number into a user JID. Anything that already
// looks like a JID is returned unchanged.
func FormatJID(recipient string) string {
	if strings.Contains(recipient, "@") {
		return recipient
	}
	return Digits(recipient) + "@" + UserServer
}

// RecipientJID normalises a caller supplied recipient the way sends address
// it: surrounding space is dropped before FormatJID.
func RecipientJID(recipient string) string {
	return FormatJID(strings.TrimSpace(recipient))
}

// Digits strips everything but 0-9 from s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func IsGroupJID(jid string) bool {
	return strings.HasSuffix(jid, "@"+GroupServer)
}
