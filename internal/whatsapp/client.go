package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/proto"

	"github.com/lojasmm/wamcp/internal/store"
)

var (
	ErrNotConnected     = errors.New("not connected to WhatsApp")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

type Options struct {
	StoreDialect string
	StoreDSN     string
	LogLevel     string
	SendRate     float64
	SendBurst    int
}

// Client wraps a whatsmeow session and mirrors every message it sees into
// the local history store.
type Client struct {
	wa      *whatsmeow.Client
	history *store.BoltStore
	limiter *rate.Limiter

	mu    sync.Mutex
	names map[string]string
}

func NewClient(ctx context.Context, opts Options, history *store.BoltStore) (*Client, error) {
	dbLog := waLog.Stdout("Database", opts.LogLevel, true)
	container, err := sqlstore.New(ctx, opts.StoreDialect, opts.StoreDSN, dbLog)
	if err != nil {
		return nil, fmt.Errorf("opening device store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading device: %w", err)
	}

	burst := opts.SendBurst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if opts.SendRate > 0 {
		limit = rate.Limit(opts.SendRate)
	}
	c := &Client{
		wa:      whatsmeow.NewClient(device, waLog.Stdout("Client", opts.LogLevel, true)),
		history: history,
		limiter: rate.NewLimiter(limit, burst),
		names:   make(map[string]string),
	}
	c.wa.AddEventHandler(c.handleEvent)
	return c, nil
}

// Connect opens the websocket. A device without a stored session prints a
// pairing QR code to the terminal and waits until it is scanned.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID != nil {
		return c.wa.Connect()
	}

	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("requesting QR channel: %w", err)
	}
	if err := c.wa.Connect(); err != nil {
		return err
	}
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			log.Println("whatsapp: scan the QR code below to link this device")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		case "success":
			log.Println("whatsapp: device linked")
			return nil
		case "timeout":
			return errors.New("QR code scan timed out")
		default:
			if evt.Error != nil {
				return fmt.Errorf("pairing failed: %w", evt.Error)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.New("pairing aborted")
}

func (c *Client) Close() {
	c.wa.Disconnect()
}

func (c *Client) IsConnected() bool {
	return c.wa.IsConnected() && c.wa.IsLoggedIn()
}

// OwnJID returns the linked account's user JID without device suffix.
func (c *Client) OwnJID() string {
	if c.wa.Store.ID == nil {
		return ""
	}
	return c.wa.Store.ID.ToNonAD().String()
}

// Contacts lists the address book synced from the phone.
func (c *Client) Contacts(ctx context.Context) ([]store.Contact, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	all, err := c.wa.Store.Contacts.GetAllContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading contacts: %w", err)
	}
	out := make([]store.Contact, 0, len(all))
	for jid, info := range all {
		if jid.Server != types.DefaultUserServer {
			continue
		}
		out = append(out, store.Contact{JID: jid.String(), Name: contactName(info)})
	}
	return out, nil
}

// GroupParticipants maps every joined group to the user JIDs of its
// members. Members known only by LID are listed under their phone number
// JID as well when the server reports it.
func (c *Client) GroupParticipants(ctx context.Context) (map[string][]string, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	groups, err := c.wa.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	out := make(map[string][]string, len(groups))
	for _, g := range groups {
		members := make([]string, 0, len(g.Participants))
		for _, p := range g.Participants {
			members = append(members, p.JID.ToNonAD().String())
			if !p.PhoneNumber.IsEmpty() && p.PhoneNumber != p.JID {
				members = append(members, p.PhoneNumber.ToNonAD().String())
			}
		}
		out[g.JID.String()] = members
		if g.Name != "" {
			c.nameChat(g.JID, g.Name, time.Time{})
		}
	}
	return out, nil
}

// SendText delivers a text message and records it in the history.
func (c *Client) SendText(ctx context.Context, recipient, text string) (string, error) {
	return c.send(ctx, recipient, &waE2E.Message{Conversation: proto.String(text)}, text, nil)
}

// SendMedia uploads the file at path and sends it. With voice set the file
// goes out as a push-to-talk note regardless of its extension.
func (c *Client) SendMedia(ctx context.Context, recipient, path string, voice bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !c.IsConnected() {
		return "", ErrNotConnected
	}

	kind, mimetype := mediaKind(path, data)
	if voice {
		kind = whatsmeow.MediaAudio
	}
	up, err := c.wa.Upload(ctx, data, kind)
	if err != nil {
		return "", fmt.Errorf("uploading media: %w", err)
	}
	fileName := filepath.Base(path)
	msg := mediaMessage(kind, mimetype, fileName, up, voice)
	return c.send(ctx, recipient, msg, "", sentMedia(msg, fileName))
}

func (c *Client) send(ctx context.Context, recipient string, msg *waE2E.Message, body string, media *store.Media) (string, error) {
	jid, err := parseRecipient(recipient)
	if err != nil {
		return "", err
	}
	if !c.IsConnected() {
		return "", ErrNotConnected
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.wa.SendMessage(ctx, jid, msg)
	if err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}

	ts := resp.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	rec := store.Message{
		ID:        string(resp.ID),
		ChatJID:   jid.ToNonAD().String(),
		Sender:    c.OwnJID(),
		FromMe:    true,
		Body:      body,
		Timestamp: ts,
		Media:     media,
	}
	if err := c.history.SaveMessage(rec); err != nil {
		log.Printf("whatsapp: recording sent message %s: %v", rec.ID, err)
	}
	return rec.ID, nil
}

// Download fetches and decrypts a stored attachment.
func (c *Client) Download(ctx context.Context, m *store.Media) ([]byte, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	d, err := downloadable(m)
	if err != nil {
		return nil, err
	}
	data, err := c.wa.Download(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("downloading media: %w", err)
	}
	return data, nil
}

func contactName(info types.ContactInfo) string {
	switch {
	case info.FullName != "":
		return info.FullName
	case info.FirstName != "":
		return info.FirstName
	case info.PushName != "":
		return info.PushName
	case info.BusinessName != "":
		return info.BusinessName
	}
	return ""
}
