package whatsapp

import (
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/lojasmm/wamcp/internal/store"
)

// convertMessage maps a whatsmeow message event onto a history record. The
// second return is false for messages with neither text nor media
// (receipts, reactions, protocol messages).
func convertMessage(evt *events.Message) (store.Message, bool) {
	body := extractText(evt.Message)
	media := extractMedia(evt.Message)
	if body == "" && media == nil {
		return store.Message{}, false
	}
	return store.Message{
		ID:        string(evt.Info.ID),
		ChatJID:   evt.Info.Chat.ToNonAD().String(),
		Sender:    evt.Info.Sender.ToNonAD().String(),
		FromMe:    evt.Info.IsFromMe,
		Body:      body,
		Timestamp: evt.Info.Timestamp,
		Media:     media,
	}, true
}

func extractText(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	switch {
	case msg.GetConversation() != "":
		return msg.GetConversation()
	case msg.GetExtendedTextMessage() != nil:
		return msg.GetExtendedTextMessage().GetText()
	case msg.GetImageMessage() != nil:
		return msg.GetImageMessage().GetCaption()
	case msg.GetVideoMessage() != nil:
		return msg.GetVideoMessage().GetCaption()
	case msg.GetDocumentMessage() != nil:
		return msg.GetDocumentMessage().GetCaption()
	}
	return ""
}

func extractMedia(msg *waE2E.Message) *store.Media {
	if msg == nil {
		return nil
	}
	if img := msg.GetImageMessage(); img != nil {
		return &store.Media{
			Type: "image", Mimetype: img.GetMimetype(),
			URL: img.GetURL(), DirectPath: img.GetDirectPath(),
			MediaKey: img.GetMediaKey(), FileSHA256: img.GetFileSHA256(), FileEncSHA256: img.GetFileEncSHA256(),
			FileLength: img.GetFileLength(),
		}
	}
	if vid := msg.GetVideoMessage(); vid != nil {
		return &store.Media{
			Type: "video", Mimetype: vid.GetMimetype(),
			URL: vid.GetURL(), DirectPath: vid.GetDirectPath(),
			MediaKey: vid.GetMediaKey(), FileSHA256: vid.GetFileSHA256(), FileEncSHA256: vid.GetFileEncSHA256(),
			FileLength: vid.GetFileLength(),
		}
	}
	if aud := msg.GetAudioMessage(); aud != nil {
		return &store.Media{
			Type: "audio", Mimetype: aud.GetMimetype(),
			URL: aud.GetURL(), DirectPath: aud.GetDirectPath(),
			MediaKey: aud.GetMediaKey(), FileSHA256: aud.GetFileSHA256(), FileEncSHA256: aud.GetFileEncSHA256(),
			FileLength: aud.GetFileLength(),
		}
	}
	if doc := msg.GetDocumentMessage(); doc != nil {
		return &store.Media{
			Type: "document", Mimetype: doc.GetMimetype(), FileName: doc.GetFileName(),
			URL: doc.GetURL(), DirectPath: doc.GetDirectPath(),
			MediaKey: doc.GetMediaKey(), FileSHA256: doc.GetFileSHA256(), FileEncSHA256: doc.GetFileEncSHA256(),
			FileLength: doc.GetFileLength(),
		}
	}
	if st := msg.GetStickerMessage(); st != nil {
		return &store.Media{
			Type: "sticker", Mimetype: st.GetMimetype(),
			URL: st.GetURL(), DirectPath: st.GetDirectPath(),
			MediaKey: st.GetMediaKey(), FileSHA256: st.GetFileSHA256(), FileEncSHA256: st.GetFileEncSHA256(),
			FileLength: st.GetFileLength(),
		}
	}
	return nil
}
