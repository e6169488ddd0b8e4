package transmittal

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

func TestAllowed(t *testing.T) {
	all := []models.Status{models.StatusDraft, models.StatusGenerated, models.StatusSent, models.StatusReceived}

	for _, s := range all {
		draft := s == models.StatusDraft
		assert.Equal(t, draft, Allowed(ActionEdit, s, false), "edit from %s", s)
		assert.Equal(t, draft, Allowed(ActionDelete, s, false), "delete from %s", s)
		assert.Equal(t, draft, Allowed(ActionEdit, s, true), "strict edit from %s", s)
		assert.Equal(t, draft, Allowed(ActionDelete, s, true), "strict delete from %s", s)
		assert.Equal(t, draft, Allowed(ActionGenerate, s, true), "generate from %s", s)
		assert.True(t, Allowed(ActionSend, s, false), "permissive send from %s", s)
		assert.True(t, Allowed(ActionReceive, s, false), "permissive receive from %s", s)
	}

	assert.False(t, Allowed(ActionSend, models.StatusDraft, true))
	assert.True(t, Allowed(ActionSend, models.StatusGenerated, true))
	assert.True(t, Allowed(ActionSend, models.StatusSent, true))
	assert.False(t, Allowed(ActionSend, models.StatusReceived, true))
	assert.False(t, Allowed(ActionReceive, models.StatusDraft, true))
	assert.True(t, Allowed(ActionReceive, models.StatusReceived, true))
}

func TestRejectionMessages(t *testing.T) {
	assert.EqualError(t, rejection(ActionDelete, models.StatusSent), "Cannot delete generated transmittal")
	assert.EqualError(t, rejection(ActionSend, ""), "Cannot send transmittal in its current state")
	assert.True(t, errors.Is(rejection(ActionReceive, models.StatusDraft), ErrInvalidState))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "TRN-2024-001", FormatNumber(2024, 1))
	assert.Equal(t, "TRN-2024-1234", FormatNumber(2024, 1234))
}

func TestValidateAttachment(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}

	for _, ct := range []string{"image/png", "application/pdf", "image/jpeg; charset=binary"} {
		att, err := ValidateAttachment("receipt", ct, payload)
		require.NoError(t, err, ct)
		decoded, err := base64.StdEncoding.DecodeString(att.Base64Content)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
		assert.Equal(t, ct, att.ContentType)
		assert.Equal(t, "receipt", att.Filename)
	}

	_, err := ValidateAttachment("notes.txt", "text/plain", []byte("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedMedia))

	_, err = ValidateAttachment("blob", "", []byte("hi"))
	assert.True(t, errors.Is(err, ErrUnsupportedMedia))
}
