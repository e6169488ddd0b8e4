package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/storage"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

func TestSeedCoversEveryState(t *testing.T) {
	ctx := context.Background()
	m := transmittal.NewManager(storage.NewMemoryStore(), transmittal.Options{StrictTransitions: true})

	created, err := seed(ctx, m, time.Date(2024, 10, 9, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, created, len(demoSet))

	states := map[models.Status]int{}
	for i, tr := range created {
		states[tr.Status]++
		assert.Equal(t, demoSet[i].target, tr.Status)
		assert.Equal(t, demoSet[i].docs, tr.DocumentCount)
	}
	assert.Equal(t, 2, states[models.StatusDraft])
	assert.Equal(t, 1, states[models.StatusGenerated])
	assert.Equal(t, 1, states[models.StatusSent])
	assert.Equal(t, 1, states[models.StatusReceived])

	n, err := m.Count(ctx, transmittal.StatusAll)
	require.NoError(t, err)
	assert.EqualValues(t, len(demoSet), n)
}

func TestPrintTable(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	number := "TRN-2024-001"
	require.NoError(t, printTable(cmd, []*models.Transmittal{
		{ID: "a", Title: "Site Plan", Status: models.StatusDraft, SendMode: models.SendModeHardcopy, DocumentCount: 2},
		{ID: "b", Title: "MEP", TransmittalNumber: &number, Status: models.StatusGenerated, SendMode: models.SendModeSoftcopy},
	}))
	assert.Contains(t, out.String(), "TRN-2024-001")
	assert.Contains(t, out.String(), "Site Plan")
}
