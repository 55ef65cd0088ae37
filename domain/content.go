package domain

import (
	"encoding/json"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "chathub/errors"
)

// MessageContent is the normalized body of an inbound send. Clients emit
// either a bare string or an object carrying text plus an optional
// attachment; both collapse into this variant at the event boundary so the
// router never sees duck-typed payloads.
type MessageContent struct {
	Text           string `json:"text"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	AttachmentType string `json:"attachment_type,omitempty"`
}

func (c MessageContent) HasAttachment() bool {
	return c.AttachmentURL != ""
}

// NormalizeContent decodes the raw wire value into a MessageContent.
// A JSON string becomes plain text; an object keeps its attachment fields.
// Attachment media types that look like MIME types are canonicalized,
// short tags ("image", "call") pass through lowercased.
func NormalizeContent(raw json.RawMessage) (MessageContent, error) {
	if len(raw) == 0 {
		return MessageContent{}, apperrors.ErrEmptyContent
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return MessageContent{}, apperrors.ErrEmptyContent
		}
		return MessageContent{Text: text}, nil
	}

	var content MessageContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return MessageContent{}, apperrors.ErrInvalidPayload
	}
	if strings.TrimSpace(content.Text) == "" && !content.HasAttachment() {
		return MessageContent{}, apperrors.ErrEmptyContent
	}
	content.AttachmentType = NormalizeMediaType(content.AttachmentType)
	return content, nil
}

// NormalizeMediaType canonicalizes a client-supplied media tag.
func NormalizeMediaType(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if !strings.Contains(tag, "/") {
		return tag
	}
	if m := mimetype.Lookup(tag); m != nil {
		return m.String()
	}
	return tag
}
