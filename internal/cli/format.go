package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lojasmm/wamcp/internal/tools"
)

const previewRunes = 30

func formatTime(ts int64) string {
	if ts == 0 {
		return "unknown time"
	}
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04:05")
}

func user(jid string) string {
	u, _, _ := strings.Cut(jid, "@")
	return u
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes]) + "..."
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printContacts(w io.Writer, contacts []tools.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(w, "No contacts found.")
		return
	}
	for i, c := range contacts {
		number := c.Number
		if number == "" {
			number = "No number"
		}
		fmt.Fprintf(w, "%d. %s (%s) - ID: %s\n", i+1, c.Name, number, c.ID)
	}
}

func chatKind(c tools.Chat) string {
	if c.IsGroup {
		return "Group"
	}
	return "Direct"
}

func printChats(w io.Writer, chats []tools.Chat) {
	if len(chats) == 0 {
		fmt.Fprintln(w, "No chats found.")
		return
	}
	for i, c := range chats {
		last := ""
		if c.LastMessage != nil {
			last = " - Last message: " + preview(c.LastMessage.Body)
		}
		fmt.Fprintf(w, "%d. %s (%s) - ID: %s%s\n", i+1, c.Name, chatKind(c), c.ID, last)
	}
}

func printChat(w io.Writer, c *tools.Chat) {
	fmt.Fprintf(w, "%s (%s)\n", c.Name, chatKind(*c))
	fmt.Fprintf(w, "ID: %s\n", c.ID)
	fmt.Fprintf(w, "Last active: %s\n", formatTime(c.Timestamp))
	if m := c.LastMessage; m != nil {
		fmt.Fprintf(w, "Last message: [%s] %s: %s\n", formatTime(m.Timestamp), user(m.From), m.Body)
	}
}

func printMessages(w io.Writer, msgs []tools.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages found.")
		return
	}
	for i, m := range msgs {
		from := user(m.From)
		if m.Author != "" {
			from += " / " + user(m.Author)
		}
		fmt.Fprintf(w, "%d. [%s] From: %s - ID: %s\n", i+1, formatTime(m.Timestamp), from, m.ID)
		fmt.Fprintf(w, "   %s\n", m.Body)
		if m.HasMedia {
			fmt.Fprintln(w, "   [Contains media]")
		}
		fmt.Fprintln(w)
	}
}

func printInteraction(w io.Writer, m *tools.Interaction) {
	fmt.Fprintf(w, "[%s] From: %s To: %s - ID: %s\n", formatTime(m.Timestamp), user(m.From), user(m.To), m.ID)
	fmt.Fprintf(w, "   %s\n", m.Body)
}

func printContext(w io.Writer, mc *tools.MessageContext) {
	fmt.Fprintf(w, "Chat: %s (%s)\n", mc.Chat.Name, mc.Chat.ID)
	fmt.Fprintln(w, "\nContext messages:")
	for _, m := range mc.ContextMessages {
		marker := "  "
		if m.IsTargetMessage {
			marker = "→ "
		}
		fmt.Fprintf(w, "%s[%s] From: %s\n", marker, formatTime(m.Timestamp), user(m.From))
		fmt.Fprintf(w, "%s %s\n\n", marker, m.Body)
	}
}

func printSendResult(w io.Writer, r *tools.SendResult) {
	status := "OK"
	if !r.Success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s: %s\n", status, r.Message)
}

func printDownloadResult(w io.Writer, r *tools.DownloadResult) {
	if !r.Success {
		fmt.Fprintf(w, "FAILED: %s\n", r.Message)
		return
	}
	fmt.Fprintf(w, "OK: %s\n%s\n", r.Message, r.FilePath)
}
