package transmittal

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
)

// Attachment is an uploaded receipt encoded for transport inside JSON
type Attachment struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	Base64Content string `json:"base64_content"`
}

// AllowedContentType accepts images and PDFs
func AllowedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// ValidateAttachment rejects anything but images and PDFs and base64-encodes the payload
func ValidateAttachment(filename, contentType string, payload []byte) (*Attachment, error) {
	if !AllowedContentType(contentType) {
		return nil, &Error{
			Kind:    ErrUnsupportedMedia,
			Message: fmt.Sprintf("Only image files and PDFs are allowed, got %q", contentType),
		}
	}
	return &Attachment{
		Filename:      filename,
		ContentType:   contentType,
		Base64Content: base64.StdEncoding.EncodeToString(payload),
	}, nil
}
