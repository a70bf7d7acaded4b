package whatsapp

import (
	"go.mau.fi/whatsmeow/types"

	"github.com/lojasmm/wamcp/internal/store"
)

func parseRecipient(recipient string) (types.JID, error) {
	jid, err := types.ParseJID(store.RecipientJID(recipient))
	if err != nil {
		return types.JID{}, err
	}
	if jid.User == "" {
		return types.JID{}, ErrInvalidRecipient
	}
	return jid, nil
}
