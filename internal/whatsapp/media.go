package whatsapp

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"

	"github.com/lojasmm/wamcp/internal/store"
)

const voiceMimetype = "audio/ogg; codecs=opus"

// mediaKind picks the upload class and mimetype for a file from its
// extension, sniffing the content for anything unrecognised.
func mediaKind(path string, data []byte) (whatsmeow.MediaType, string) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg":
		return whatsmeow.MediaImage, "image/jpeg"
	case "png":
		return whatsmeow.MediaImage, "image/png"
	case "gif":
		return whatsmeow.MediaImage, "image/gif"
	case "webp":
		return whatsmeow.MediaImage, "image/webp"
	case "ogg", "opus":
		return whatsmeow.MediaAudio, voiceMimetype
	case "mp3":
		return whatsmeow.MediaAudio, "audio/mpeg"
	case "m4a":
		return whatsmeow.MediaAudio, "audio/mp4"
	case "mp4":
		return whatsmeow.MediaVideo, "video/mp4"
	case "mov":
		return whatsmeow.MediaVideo, "video/quicktime"
	case "avi":
		return whatsmeow.MediaVideo, "video/avi"
	case "pdf":
		return whatsmeow.MediaDocument, "application/pdf"
	}
	return whatsmeow.MediaDocument, http.DetectContentType(data)
}

// mediaMessage wraps an uploaded file into the message type matching kind.
// Voice notes are always sent as push-to-talk opus audio.
func mediaMessage(kind whatsmeow.MediaType, mimetype, fileName string, up whatsmeow.UploadResponse, voice bool) *waE2E.Message {
	if voice {
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			Mimetype:      proto.String(voiceMimetype),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
			PTT:           proto.Bool(true),
		}}
	}

	switch kind {
	case whatsmeow.MediaImage:
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			Mimetype:      proto.String(mimetype),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	case whatsmeow.MediaVideo:
		return &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			Mimetype:      proto.String(mimetype),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	case whatsmeow.MediaAudio:
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			Mimetype:      proto.String(mimetype),
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	}
	return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
		Title:         proto.String(fileName),
		FileName:      proto.String(fileName),
		Mimetype:      proto.String(mimetype),
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
	}}
}

// downloadable rebuilds the protobuf whatsmeow needs to fetch and decrypt a
// stored attachment.
func downloadable(m *store.Media) (whatsmeow.DownloadableMessage, error) {
	if m == nil || m.DirectPath == "" && m.URL == "" || len(m.MediaKey) == 0 {
		return nil, fmt.Errorf("incomplete media information")
	}
	switch m.Type {
	case "image":
		return &waE2E.ImageMessage{
			URL: proto.String(m.URL), DirectPath: proto.String(m.DirectPath), Mimetype: proto.String(m.Mimetype),
			MediaKey: m.MediaKey, FileSHA256: m.FileSHA256, FileEncSHA256: m.FileEncSHA256,
			FileLength: proto.Uint64(m.FileLength),
		}, nil
	case "video":
		return &waE2E.VideoMessage{
			URL: proto.String(m.URL), DirectPath: proto.String(m.DirectPath), Mimetype: proto.String(m.Mimetype),
			MediaKey: m.MediaKey, FileSHA256: m.FileSHA256, FileEncSHA256: m.FileEncSHA256,
			FileLength: proto.Uint64(m.FileLength),
		}, nil
	case "audio":
		return &waE2E.AudioMessage{
			URL: proto.String(m.URL), DirectPath: proto.String(m.DirectPath), Mimetype: proto.String(m.Mimetype),
			MediaKey: m.MediaKey, FileSHA256: m.FileSHA256, FileEncSHA256: m.FileEncSHA256,
			FileLength: proto.Uint64(m.FileLength),
		}, nil
	case "document":
		return &waE2E.DocumentMessage{
			URL: proto.String(m.URL), DirectPath: proto.String(m.DirectPath), Mimetype: proto.String(m.Mimetype),
			MediaKey: m.MediaKey, FileSHA256: m.FileSHA256, FileEncSHA256: m.FileEncSHA256,
			FileLength: proto.Uint64(m.FileLength),
		}, nil
	case "sticker":
		return &waE2E.StickerMessage{
			URL: proto.String(m.URL), DirectPath: proto.String(m.DirectPath), Mimetype: proto.String(m.Mimetype),
			MediaKey: m.MediaKey, FileSHA256: m.FileSHA256, FileEncSHA256: m.FileEncSHA256,
			FileLength: proto.Uint64(m.FileLength),
		}, nil
	}
	return nil, fmt.Errorf("unsupported media type %q", m.Type)
}

// sentMedia describes an outgoing attachment for the history record.
func sentMedia(msg *waE2E.Message, fileName string) *store.Media {
	m := extractMedia(msg)
	if m != nil && m.FileName == "" && m.Type == "document" {
		m.FileName = fileName
	}
	return m
}
