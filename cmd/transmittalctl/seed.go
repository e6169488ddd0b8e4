package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/transmittal"
)

// demoTransmittal is one seeded record and how far along its lifecycle it goes
type demoTransmittal struct {
	title     string
	recipient string
	mode      models.SendMode
	docs      int
	target    models.Status
}

var demoSet = []demoTransmittal{
	{"Architectural Drawings - Level 1 & 2", "John Smith", models.SendModeSoftcopy, 5, models.StatusReceived},
	{"MEP Systems - HVAC & Electrical", "Sarah Johnson", models.SendModeHardcopy, 8, models.StatusSent},
	{"Interior Design Package", "Mike Chen", models.SendModeSoftcopy, 12, models.StatusGenerated},
	{"Structural Drawings - Draft", "Priya Raman", models.SendModeHardcopy, 3, models.StatusDraft},
	{"Site Plan Updates", "Alex Moreno", models.SendModeSoftcopy, 2, models.StatusDraft},
}

func seed(ctx context.Context, m *transmittal.Manager, now time.Time) ([]*models.Transmittal, error) {
	project := "Greenfield Residential Complex"
	stage := "Design Development"
	out := make([]*models.Transmittal, 0, len(demoSet))

	for i, d := range demoSet {
		docs := make([]models.DocumentItem, d.docs)
		for j := range docs {
			docs[j] = models.DocumentItem{
				DocumentNo: fmt.Sprintf("GRC-%02d-%03d", i+1, j+1),
				Title:      fmt.Sprintf("%s sheet %d", d.title, j+1),
				Revision:   j % 3,
				Copies:     1 + j%2,
				Action:     "for approval",
			}
		}
		date := models.NewDate(now.AddDate(0, 0, -len(demoSet)+i))

		t, err := m.Create(ctx, models.TransmittalCreate{
			TransmittalType:   "Drawing",
			Department:        "Architecture",
			DesignStage:       &stage,
			TransmittalDate:   &date,
			SendTo:            "Client",
			Salutation:        "Mr",
			RecipientName:     d.recipient,
			SenderName:        "Sarah Wilson",
			SenderDesignation: "Project Architect",
			SendMode:          d.mode,
			Documents:         docs,
			Title:             d.title,
			ProjectName:       &project,
		})
		if err != nil {
			return out, fmt.Errorf("seed %q: %w", d.title, err)
		}

		if d.target != models.StatusDraft {
			if t, err = m.Generate(ctx, t.ID); err != nil {
				return out, fmt.Errorf("generate %q: %w", d.title, err)
			}
		}
		if d.target == models.StatusSent || d.target == models.StatusReceived {
			person := "Receptionist"
			sentAt := models.DateTime{Time: now}
			if t, err = m.RecordSend(ctx, t.ID, models.SendDetails{DeliveryPerson: &person, SendDate: &sentAt}, "Sent"); err != nil {
				return out, fmt.Errorf("send %q: %w", d.title, err)
			}
		}
		if d.target == models.StatusReceived {
			received := models.NewDate(now)
			at := now.Format("15:04")
			if t, err = m.RecordReceive(ctx, t.ID, models.ReceiveDetails{ReceivedDate: &received, ReceivedTime: &at}, "Received"); err != nil {
				return out, fmt.Errorf("receive %q: %w", d.title, err)
			}
		}
		out = append(out, t)
	}
	return out, nil
}
