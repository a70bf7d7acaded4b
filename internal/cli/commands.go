package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lojasmm/wamcp/internal/client"
	"github.com/lojasmm/wamcp/internal/tools"
)

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Search contacts and their chats",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts by name or number",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := a.client.SearchContacts(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.render(cmd, contacts, func(w io.Writer) { printContacts(w, contacts) })
		},
	})

	var limit, page int
	chats := &cobra.Command{
		Use:   "chats <jid>",
		Short: "List chats a contact takes part in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.GetContactChats(cmd.Context(), args[0], limit, page)
			if err != nil {
				return err
			}
			return a.render(cmd, list, func(w io.Writer) { printChats(w, list) })
		},
	}
	chats.Flags().IntVar(&limit, "limit", 20, "results per page")
	chats.Flags().IntVar(&page, "page", 0, "page number, from 0")
	cmd.AddCommand(chats)

	cmd.AddCommand(&cobra.Command{
		Use:   "direct-chat <phone>",
		Short: "Show the direct chat with a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := a.client.GetDirectChatByContact(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, chat, func(w io.Writer) { printChat(w, chat) })
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "last-interaction <jid>",
		Short: "Show the latest message exchanged with a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.GetLastInteraction(cmd.Context(), args[0])
			if client.IsNotFound(err) && !a.asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), "No interaction found.")
				return nil
			}
			if err != nil {
				return err
			}
			return a.render(cmd, m, func(w io.Writer) { printInteraction(w, m) })
		},
	})
	return cmd
}

func (a *app) chatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List and inspect chats",
	}

	var p tools.ListChatsParams
	var noLast bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noLast {
				p.IncludeLastMessage = tools.Bool(false)
			}
			chats, err := a.client.ListChats(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.render(cmd, chats, func(w io.Writer) { printChats(w, chats) })
		},
	}
	list.Flags().StringVar(&p.Query, "query", "", "filter by name or id")
	list.Flags().IntVar(&p.Limit, "limit", 20, "results per page")
	list.Flags().IntVar(&p.Page, "page", 0, "page number, from 0")
	list.Flags().StringVar(&p.SortBy, "sort-by", "last_active", "last_active or name")
	list.Flags().BoolVar(&noLast, "no-last-message", false, "omit the last message of each chat")
	cmd.AddCommand(list)

	var getNoLast bool
	get := &cobra.Command{
		Use:   "get <jid>",
		Short: "Show one chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chat, err := a.client.GetChat(cmd.Context(), args[0], !getNoLast)
			if err != nil {
				return err
			}
			return a.render(cmd, chat, func(w io.Writer) { printChat(w, chat) })
		},
	}
	get.Flags().BoolVar(&getNoLast, "no-last-message", false, "omit the last message")
	cmd.AddCommand(get)
	return cmd
}

func (a *app) messagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List messages and their context",
	}

	var p tools.ListMessagesParams
	var after, before string
	var ctxBefore, ctxAfter int
	list := &cobra.Command{
		Use:   "list",
		Short: "List messages of a chat, or of the most recent chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.After = tools.DateBound(after)
			p.Before = tools.DateBound(before)
			if cmd.Flags().Changed("context-before") {
				p.ContextBefore = tools.Int(ctxBefore)
			}
			if cmd.Flags().Changed("context-after") {
				p.ContextAfter = tools.Int(ctxAfter)
			}
			msgs, err := a.client.ListMessages(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.render(cmd, msgs, func(w io.Writer) { printMessages(w, msgs) })
		},
	}
	f := list.Flags()
	f.StringVar(&p.ChatJID, "chat", "", "chat JID")
	f.StringVar(&p.SenderPhoneNumber, "sender", "", "sender phone number")
	f.StringVar(&p.Query, "query", "", "text to search for")
	f.StringVar(&after, "after", "", "only messages at or after this date")
	f.StringVar(&before, "before", "", "only messages at or before this date")
	f.IntVar(&p.Limit, "limit", 20, "results per page")
	f.IntVar(&p.Page, "page", 0, "page number, from 0")
	f.BoolVar(&p.IncludeContext, "context", false, "include surrounding messages")
	f.IntVar(&ctxBefore, "context-before", 1, "messages before each match")
	f.IntVar(&ctxAfter, "context-after", 1, "messages after each match")
	cmd.AddCommand(list)

	var nBefore, nAfter int
	context := &cobra.Command{
		Use:   "context <message_id>",
		Short: "Show the messages around a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := a.client.GetMessageContext(cmd.Context(), args[0], nBefore, nAfter)
			if err != nil {
				return err
			}
			return a.render(cmd, mc, func(w io.Writer) { printContext(w, mc) })
		},
	}
	context.Flags().IntVar(&nBefore, "before", 5, "messages before")
	context.Flags().IntVar(&nAfter, "after", 5, "messages after")
	cmd.AddCommand(context)
	return cmd
}

func (a *app) sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send messages, files and voice notes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "text <recipient> <message...>",
		Short: "Send a text message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.render(cmd, res, func(w io.Writer) { printSendResult(w, res) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "file <recipient> <path>",
		Short: "Send a file from the server's filesystem",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.SendFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.render(cmd, res, func(w io.Writer) { printSendResult(w, res) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "audio <recipient> <path>",
		Short: "Send an audio file as a voice note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.SendAudioMessage(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.render(cmd, res, func(w io.Writer) { printSendResult(w, res) })
		},
	})
	return cmd
}

func (a *app) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <message_id> <chat_jid>",
		Short: "Download a message attachment on the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.DownloadMedia(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.render(cmd, res, func(w io.Writer) { printDownloadResult(w, res) })
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file: %s\n", path)
			fmt.Fprintf(out, "server: %s\n", a.client.BaseURL())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-server <url>",
		Short: "Store the default server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadFileConfig()
			if err != nil {
				return err
			}
			cfg.Server = strings.TrimRight(args[0], "/")
			path, err := saveFileConfig(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "server set to %s in %s\n", cfg.Server, path)
			return nil
		},
	})
	return cmd
}
