package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatJID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"5511999990000", "5511999990000@s.whatsapp.net"},
		{"+55 (11) 99999-0000", "5511999990000@s.whatsapp.net"},
		{"5511999990000@s.whatsapp.net", "5511999990000@s.whatsapp.net"},
		{"120363000000000000@g.us", "120363000000000000@g.us"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatJID(tt.in), tt.in)
	}
}

func TestRecipientJID(t *testing.T) {
	assert.Equal(t, "120363000000000000@g.us", RecipientJID("  120363000000000000@g.us\n"))
	assert.Equal(t, RecipientJID("x@g.us"), RecipientJID(" x@g.us"))
	assert.Equal(t, "5511999990000@s.whatsapp.net", RecipientJID(" +55 11 99999-0000 "))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "123", Digits("a1-2 3b"))
	assert.Equal(t, "", Digits("none"))
}

func TestIsGroupJID(t *testing.T) {
	assert.True(t, IsGroupJID("120363000000000000@g.us"))
	assert.False(t, IsGroupJID("5511999990000@s.whatsapp.net"))
}
