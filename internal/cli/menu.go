package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lojasmm/wamcp/internal/client"
	"github.com/lojasmm/wamcp/internal/tools"
)

const menuText = `
=== WhatsApp MCP CLI ===
1. Search contacts
2. List chats
3. List messages from a chat
4. Send a message
5. Send a file
6. Download media from a message
7. Get message context
8. Exit`

type menu struct {
	c   *client.Client
	in  *bufio.Scanner
	out io.Writer
}

// runMenu drives the numbered menu until the user exits or input ends.
func runMenu(ctx context.Context, c *client.Client, in io.Reader, out io.Writer) error {
	m := &menu{c: c, in: bufio.NewScanner(in), out: out}
	fmt.Fprintf(out, "Using server %s\n", c.BaseURL())

	for {
		fmt.Fprintln(out, menuText)
		choice, ok := m.ask("\nEnter your choice (1-8): ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = m.searchContacts(ctx)
		case "2":
			err = m.listChats(ctx)
		case "3":
			err = m.listMessages(ctx)
		case "4":
			err = m.sendMessage(ctx)
		case "5":
			err = m.sendFile(ctx)
		case "6":
			err = m.downloadMedia(ctx)
		case "7":
			err = m.messageContext(ctx)
		case "8":
			fmt.Fprintln(out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(out, "Invalid choice. Please try again.")
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

// ask prints prompt and reads one line. ok is false once input is exhausted.
func (m *menu) ask(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *menu) askInt(prompt string, def int) int {
	s, _ := m.ask(prompt)
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (m *menu) searchContacts(ctx context.Context) error {
	query, _ := m.ask("Enter search query: ")
	contacts, err := m.c.SearchContacts(ctx, query)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nSearch results:")
	printContacts(m.out, contacts)
	return nil
}

func (m *menu) listChats(ctx context.Context) error {
	chats, err := m.c.ListChats(ctx, tools.ListChatsParams{Limit: 10})
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nRecent chats:")
	printChats(m.out, chats)
	return nil
}

func (m *menu) listMessages(ctx context.Context) error {
	jid, _ := m.ask("Enter chat JID: ")
	msgs, err := m.c.ListMessages(ctx, tools.ListMessagesParams{ChatJID: jid, Limit: 10})
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nRecent messages:")
	printMessages(m.out, msgs)
	return nil
}

func (m *menu) sendMessage(ctx context.Context) error {
	recipient, _ := m.ask("Enter recipient (phone number or JID): ")
	text, _ := m.ask("Enter message: ")
	res, err := m.c.SendMessage(ctx, recipient, text)
	if err != nil {
		return err
	}
	printSendResult(m.out, res)
	return nil
}

func (m *menu) sendFile(ctx context.Context) error {
	recipient, _ := m.ask("Enter recipient (phone number or JID): ")
	path, _ := m.ask("Enter file path: ")
	res, err := m.c.SendFile(ctx, recipient, path)
	if err != nil {
		return err
	}
	printSendResult(m.out, res)
	return nil
}

func (m *menu) downloadMedia(ctx context.Context) error {
	id, _ := m.ask("Enter message ID: ")
	jid, _ := m.ask("Enter chat JID: ")
	res, err := m.c.DownloadMedia(ctx, id, jid)
	if err != nil {
		return err
	}
	printDownloadResult(m.out, res)
	return nil
}

func (m *menu) messageContext(ctx context.Context) error {
	id, _ := m.ask("Enter message ID: ")
	before := m.askInt("Number of messages before (default: 5): ", 5)
	after := m.askInt("Number of messages after (default: 5): ", 5)

	mc, err := m.c.GetMessageContext(ctx, id, before, after)
	if client.IsNotFound(err) {
		fmt.Fprintln(m.out, "Message not found.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nMessage context:")
	printContext(m.out, mc)
	return nil
}
