package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft() *Transmittal {
	t := &Transmittal{
		ID:              "t-1",
		TransmittalType: "Drawing",
		Department:      "Architecture",
		TransmittalDate: NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		RecipientName:   "John Anderson",
		SendMode:        SendModeHardcopy,
		Title:           "Plans",
		Status:          StatusDraft,
	}
	t.SetDocuments([]DocumentItem{{DocumentNo: "A-001", Title: "Ground", Copies: 1}})
	return t
}

func TestApplyOnlyTouchesPresentFields(t *testing.T) {
	tr := draft()
	changed := NewPatch().Title("Revised Plans").Remarks("urgent").Build().Apply(tr)

	assert.ElementsMatch(t, []string{"title", "remarks"}, changed)
	assert.Equal(t, "Revised Plans", tr.Title)
	require.NotNil(t, tr.Remarks)
	assert.Equal(t, "urgent", *tr.Remarks)
	assert.Equal(t, "John Anderson", tr.RecipientName)
	assert.Equal(t, SendModeHardcopy, tr.SendMode)
	assert.Equal(t, 1, tr.DocumentCount)
}

func TestApplyRecomputesDocumentCount(t *testing.T) {
	tr := draft()
	docs := []DocumentItem{
		{DocumentNo: "A-001", Title: "Ground", Copies: 1},
		{DocumentNo: "A-002", Title: "First", Copies: 2},
		{DocumentNo: "A-003", Title: "Roof", Copies: 1},
	}
	NewPatch().Documents(docs).Build().Apply(tr)
	assert.Equal(t, 3, tr.DocumentCount)
	assert.Len(t, tr.Documents, 3)

	// The patch keeps no alias to the stored list
	docs[0].Title = "mutated"
	assert.Equal(t, "Ground", tr.Documents[0].Title)

	NewPatch().Documents(nil).Build().Apply(tr)
	assert.Equal(t, 0, tr.DocumentCount)
}

func TestNullAndAbsentAreBothUnchanged(t *testing.T) {
	var p TransmittalPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title": null, "remarks": null}`), &p))
	assert.True(t, p.Empty())

	tr := draft()
	assert.Empty(t, p.Apply(tr))
	assert.Equal(t, "Plans", tr.Title)
}

func TestCloneDoesNotShareDocuments(t *testing.T) {
	tr := draft()
	c := tr.Clone()
	c.Documents[0].Title = "changed"
	assert.Equal(t, "Ground", tr.Documents[0].Title)
}

func TestSendModeOpposite(t *testing.T) {
	assert.Equal(t, SendModeSoftcopy, SendModeHardcopy.Opposite())
	assert.Equal(t, SendModeHardcopy, SendModeSoftcopy.Opposite())
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.False(t, StatusGenerated.Editable())
	assert.True(t, StatusReceived.Valid())
	assert.False(t, Status("archived").Valid())
}
