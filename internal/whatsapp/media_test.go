package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"

	"github.com/lojasmm/wamcp/internal/store"
)

func TestMediaKind(t *testing.T) {
	tests := []struct {
		path     string
		kind     whatsmeow.MediaType
		mimetype string
	}{
		{"photo.JPG", whatsmeow.MediaImage, "image/jpeg"},
		{"a/b/pic.png", whatsmeow.MediaImage, "image/png"},
		{"note.ogg", whatsmeow.MediaAudio, voiceMimetype},
		{"song.mp3", whatsmeow.MediaAudio, "audio/mpeg"},
		{"clip.mp4", whatsmeow.MediaVideo, "video/mp4"},
		{"doc.pdf", whatsmeow.MediaDocument, "application/pdf"},
	}
	for _, tt := range tests {
		kind, mimetype := mediaKind(tt.path, nil)
		assert.Equal(t, tt.kind, kind, tt.path)
		assert.Equal(t, tt.mimetype, mimetype, tt.path)
	}

	kind, mimetype := mediaKind("notes.txt", []byte("plain words"))
	assert.Equal(t, whatsmeow.MediaDocument, kind)
	assert.Equal(t, "text/plain; charset=utf-8", mimetype)
}

func TestMediaMessageVoice(t *testing.T) {
	up := whatsmeow.UploadResponse{URL: "https://mmg/x", DirectPath: "/x", FileLength: 10}
	msg := mediaMessage(whatsmeow.MediaAudio, "audio/mpeg", "note.mp3", up, true)

	require.NotNil(t, msg.GetAudioMessage())
	assert.True(t, msg.GetAudioMessage().GetPTT())
	assert.Equal(t, voiceMimetype, msg.GetAudioMessage().GetMimetype())
	assert.Equal(t, uint64(10), msg.GetAudioMessage().GetFileLength())
}

func TestMediaMessageDocument(t *testing.T) {
	msg := mediaMessage(whatsmeow.MediaDocument, "application/pdf", "report.pdf", whatsmeow.UploadResponse{}, false)
	require.NotNil(t, msg.GetDocumentMessage())
	assert.Equal(t, "report.pdf", msg.GetDocumentMessage().GetFileName())

	media := sentMedia(msg, "report.pdf")
	require.NotNil(t, media)
	assert.Equal(t, "document", media.Type)
	assert.Equal(t, "report.pdf", media.FileName)
}

func TestDownloadable(t *testing.T) {
	d, err := downloadable(&store.Media{Type: "image", DirectPath: "/p", MediaKey: []byte{1}, Mimetype: "image/png"})
	require.NoError(t, err)
	img, ok := d.(*waE2E.ImageMessage)
	require.True(t, ok)
	assert.Equal(t, "/p", img.GetDirectPath())

	_, err = downloadable(&store.Media{Type: "image"})
	assert.Error(t, err)

	_, err = downloadable(&store.Media{Type: "hologram", DirectPath: "/p", MediaKey: []byte{1}})
	assert.Error(t, err)

	_, err = downloadable(nil)
	assert.Error(t, err)
}
