package tools

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lojasmm/wamcp/internal/store"
)

var (
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
	unsafeExtChars  = regexp.MustCompile(`[^a-zA-Z0-9.+-]`)
)

// SendMessage delivers a text message. Transport failures are reported in
// the result rather than as an error.
func (s *Service) SendMessage(ctx context.Context, p SendMessageParams) (*SendResult, error) {
	if p.Recipient == "" || p.Message == "" {
		return nil, invalid("recipient and message parameters are required")
	}
	err := s.locks.WithLock(store.RecipientJID(p.Recipient), func() error {
		_, err := s.wa.SendText(ctx, p.Recipient, p.Message)
		return err
	})
	if err != nil {
		log.Printf("tools: send_message to %s: %v", p.Recipient, err)
		return &SendResult{Success: false, Message: "Failed to send message: " + err.Error()}, nil
	}
	return &SendResult{Success: true, Message: "Message sent successfully"}, nil
}

func (s *Service) SendFile(ctx context.Context, p SendFileParams) (*SendResult, error) {
	if p.Recipient == "" || p.MediaPath == "" {
		return nil, invalid("recipient and media_path parameters are required")
	}
	if err := s.sendMedia(ctx, p, false); err != nil {
		log.Printf("tools: send_file to %s: %v", p.Recipient, err)
		return &SendResult{Success: false, Message: "Failed to send file: " + err.Error()}, nil
	}
	return &SendResult{Success: true, Message: "File sent successfully"}, nil
}

// SendAudioMessage sends the file as a voice note.
func (s *Service) SendAudioMessage(ctx context.Context, p SendFileParams) (*SendResult, error) {
	if p.Recipient == "" || p.MediaPath == "" {
		return nil, invalid("recipient and media_path parameters are required")
	}
	if err := s.sendMedia(ctx, p, true); err != nil {
		log.Printf("tools: send_audio_message to %s: %v", p.Recipient, err)
		return &SendResult{Success: false, Message: "Failed to send audio message: " + err.Error()}, nil
	}
	return &SendResult{Success: true, Message: "Audio message sent successfully"}, nil
}

func (s *Service) sendMedia(ctx context.Context, p SendFileParams, voice bool) error {
	return s.locks.WithLock(store.RecipientJID(p.Recipient), func() error {
		_, err := s.wa.SendMedia(ctx, p.Recipient, p.MediaPath, voice)
		return err
	})
}

// DownloadMedia saves a message attachment into the download directory.
func (s *Service) DownloadMedia(ctx context.Context, p DownloadMediaParams) (*DownloadResult, error) {
	if p.MessageID == "" || p.ChatJID == "" {
		return nil, invalid("message_id and chat_jid parameters are required")
	}
	failed := &DownloadResult{Success: false, Message: "Failed to download media"}

	m, err := s.history.Message(p.ChatJID, p.MessageID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Media == nil {
		return failed, nil
	}

	data, err := s.wa.Download(ctx, m.Media)
	if err != nil {
		log.Printf("tools: download_media %s: %v", p.MessageID, err)
		return failed, nil
	}

	path, err := s.writeDownload(m.ID, m.Media.Mimetype, data)
	if err != nil {
		log.Printf("tools: download_media %s: %v", p.MessageID, err)
		return failed, nil
	}
	return &DownloadResult{Success: true, Message: "Media downloaded successfully", FilePath: path}, nil
}

func (s *Service) writeDownload(id, mimetype string, data []byte) (string, error) {
	if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(s.downloadDir, downloadName(id, mimetype)))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// downloadName builds "<id>.<subtype>" with the id reduced to [A-Za-z0-9_].
func downloadName(id, mimetype string) string {
	ext := "dat"
	if _, sub, ok := strings.Cut(mimetype, "/"); ok {
		sub, _, _ = strings.Cut(sub, ";")
		if sub = strings.TrimSpace(sub); sub != "" {
			ext = unsafeExtChars.ReplaceAllString(sub, "_")
		}
	}
	return unsafeFileChars.ReplaceAllString(id, "_") + "." + ext
}
