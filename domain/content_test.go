package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "chathub/errors"
)

func TestNormalizeContent_Bare_String(t *testing.T) {
	req := require.New(t)

	content, err := NormalizeContent(json.RawMessage(`"hello there"`))
	req.NoError(err)
	req.Equal("hello there", content.Text)
	req.False(content.HasAttachment())
}

func TestNormalizeContent_Object_With_Attachment(t *testing.T) {
	req := require.New(t)

	content, err := NormalizeContent(json.RawMessage(`{"text":"see this","attachment_url":"/up/x.png","attachment_type":"IMAGE"}`))
	req.NoError(err)
	req.Equal("see this", content.Text)
	req.Equal("/up/x.png", content.AttachmentURL)
	req.Equal("image", content.AttachmentType)
	req.True(content.HasAttachment())
}

func TestNormalizeContent_Attachment_Only(t *testing.T) {
	req := require.New(t)

	// No text is fine as long as an attachment rides along
	content, err := NormalizeContent(json.RawMessage(`{"attachment_url":"/up/doc.pdf","attachment_type":"application/pdf"}`))
	req.NoError(err)
	req.Empty(content.Text)
	req.True(content.HasAttachment())
}

func TestNormalizeContent_Rejects_Empty(t *testing.T) {
	req := require.New(t)

	cases := []json.RawMessage{
		nil,
		json.RawMessage(`""`),
		json.RawMessage(`"   "`),
		json.RawMessage(`{}`),
		json.RawMessage(`{"text":"  "}`),
	}
	for _, raw := range cases {
		_, err := NormalizeContent(raw)
		req.ErrorIs(err, apperrors.ErrEmptyContent)
	}
}

func TestNormalizeContent_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := NormalizeContent(json.RawMessage(`[1,2,3]`))
	req.ErrorIs(err, apperrors.ErrInvalidPayload)
}

func TestNormalizeMediaType(t *testing.T) {
	req := require.New(t)

	// Short tags pass through lowercased
	req.Equal("image", NormalizeMediaType(" Image "))
	req.Equal("call", NormalizeMediaType("call"))
	req.Equal("", NormalizeMediaType(""))

	// Known MIME types are canonicalized
	req.Equal("application/pdf", NormalizeMediaType("application/pdf"))

	// Unknown MIME-looking tags survive untouched
	req.Equal("application/x-who-knows", NormalizeMediaType("application/x-who-knows"))
}
