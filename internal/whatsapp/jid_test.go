package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipient(t *testing.T) {
	jid, err := parseRecipient("  +55 11 99999 0000 ")
	require.NoError(t, err)
	assert.Equal(t, "5511999990000", jid.User)
	assert.Equal(t, "s.whatsapp.net", jid.Server)

	group, err := parseRecipient("120363000000000000@g.us")
	require.NoError(t, err)
	assert.Equal(t, "g.us", group.Server)

	_, err = parseRecipient("no digits here")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}
