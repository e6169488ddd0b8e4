// Package transmittal implements the transmittal lifecycle: drafts are created and
// edited, generated into numbered documents, then marked sent and received.
//
// The Manager holds no records itself. Every call is a short read-modify-write
// against the Store, so one Manager is shared by all request goroutines.
package transmittal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/observability"
	"github.com/vijay-1103/transmittal-craft/internal/services/printer"
	"github.com/vijay-1103/transmittal-craft/internal/storage"
)

// StatusAll is the list/count filter value that matches every state
const StatusAll = "all"

// Duplicate modes
const (
	DuplicateSame     = "same"
	DuplicateOpposite = "opposite"
)

// Store is the persistent record store. Adapters report storage.ErrNotFound for
// unknown ids and storage.ErrStateChanged when a conditional write loses a race.
type Store interface {
	Create(ctx context.Context, t *models.Transmittal) error
	Get(ctx context.Context, id string) (*models.Transmittal, error)
	List(ctx context.Context, f storage.ListFilter) ([]models.Transmittal, error)
	Count(ctx context.Context, status string) (int64, error)
	Save(ctx context.Context, t *models.Transmittal) error
	SaveIfStatus(ctx context.Context, t *models.Transmittal, expected models.Status) error
	DeleteIfStatus(ctx context.Context, id string, expected models.Status) error
	NextSequence(ctx context.Context, year int) (int, error)
}

// Options configures a Manager. Zero values are usable.
type Options struct {
	// StrictTransitions rejects send before generate and receive before send or generate
	StrictTransitions bool
	// MaxListLimit clamps List limits when positive
	MaxListLimit int
	Publisher    Publisher
	Archiver     Archiver
	Logger       *zap.SugaredLogger
	Now          func() time.Time
	Renderer     func(t *models.Transmittal) ([]byte, error)
}

// ListQuery filters and pages List
type ListQuery struct {
	Status string
	Skip   int
	Limit  int
}

// Manager enforces the lifecycle rules on top of a Store
type Manager struct {
	store     Store
	strict    bool
	maxLimit  int
	publisher Publisher
	archiver  Archiver
	log       *zap.SugaredLogger
	now       func() time.Time
	render    func(t *models.Transmittal) ([]byte, error)
}

// NewManager constructs a Manager over store
func NewManager(store Store, opts Options) *Manager {
	m := &Manager{
		store:     store,
		strict:    opts.StrictTransitions,
		maxLimit:  opts.MaxListLimit,
		publisher: opts.Publisher,
		archiver:  opts.Archiver,
		log:       opts.Logger,
		now:       opts.Now,
		render:    opts.Renderer,
	}
	if m.log == nil {
		m.log = zap.NewNop().Sugar()
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}
	if m.render == nil {
		m.render = printer.GenerateTransmittalPDF
	}
	return m
}

// Create validates the payload and stores a new draft
func (m *Manager) Create(ctx context.Context, in models.TransmittalCreate) (*models.Transmittal, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	t := &models.Transmittal{
		ID:                uuid.NewString(),
		TransmittalType:   in.TransmittalType,
		Department:        in.Department,
		DesignStage:       in.DesignStage,
		TransmittalDate:   *in.TransmittalDate,
		SendTo:            in.SendTo,
		Salutation:        in.Salutation,
		RecipientName:     in.RecipientName,
		SenderName:        in.SenderName,
		SenderDesignation: in.SenderDesignation,
		SendMode:          in.SendMode,
		Title:             in.Title,
		ProjectName:       in.ProjectName,
		Purpose:           in.Purpose,
		Remarks:           in.Remarks,
		Status:            models.StatusDraft,
		CreatedDate:       m.now(),
	}
	t.SetDocuments(in.Documents)

	if err := m.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transmittal: %w", err)
	}

	m.log.Infof("📝 Transmittal created: %s (%d documents)", t.ID, t.DocumentCount)
	m.emit(EventCreated, t, "")
	return t, nil
}

// Get returns one transmittal
func (m *Manager) Get(ctx context.Context, id string) (*models.Transmittal, error) {
	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}
	return t, nil
}

// List returns transmittals newest first. Unknown statuses match nothing.
func (m *Manager) List(ctx context.Context, q ListQuery) ([]models.Transmittal, error) {
	if q.Skip < 0 {
		return nil, validationError("skip: must be greater than or equal to 0")
	}
	if q.Limit < 0 {
		return nil, validationError("limit: must be greater than or equal to 0")
	}
	if q.Limit == 0 {
		return []models.Transmittal{}, nil
	}
	if m.maxLimit > 0 && q.Limit > m.maxLimit {
		q.Limit = m.maxLimit
	}

	status, ok := statusFilter(q.Status)
	if !ok {
		return []models.Transmittal{}, nil
	}
	items, err := m.store.List(ctx, storage.ListFilter{
		Status: status,
		Skip:   q.Skip,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list transmittals: %w", err)
	}
	return items, nil
}

// Count returns how many transmittals match status
func (m *Manager) Count(ctx context.Context, status string) (int64, error) {
	filter, ok := statusFilter(status)
	if !ok {
		return 0, nil
	}
	n, err := m.store.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count transmittals: %w", err)
	}
	return n, nil
}

// Update applies a partial update to a draft
func (m *Manager) Update(ctx context.Context, id string, patch models.TransmittalPatch) (*models.Transmittal, error) {
	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}
	if !Allowed(ActionEdit, t.Status, m.strict) {
		return nil, rejection(ActionEdit, t.Status)
	}

	if err := Validate(patch); err != nil {
		return nil, err
	}
	if patch.Documents != nil {
		docs := struct {
			Documents []models.DocumentItem `json:"documents" validate:"dive"`
		}{*patch.Documents}
		if err := Validate(docs); err != nil {
			return nil, err
		}
	}

	if patch.Empty() {
		return t, nil
	}
	changed := patch.Apply(t)
	if err := m.store.SaveIfStatus(ctx, t, models.StatusDraft); err != nil {
		return nil, storeError(err, ActionEdit)
	}

	m.log.Infof("✏️ Transmittal updated: %s [%s]", t.ID, strings.Join(changed, ", "))
	m.emit(EventUpdated, t, "")
	return t, nil
}

// Delete permanently removes a draft
func (m *Manager) Delete(ctx context.Context, id string) error {
	t, err := m.store.Get(ctx, id)
	if err != nil {
		return storeError(err, "")
	}
	if !Allowed(ActionDelete, t.Status, m.strict) {
		return rejection(ActionDelete, t.Status)
	}
	if err := m.store.DeleteIfStatus(ctx, id, models.StatusDraft); err != nil {
		return storeError(err, ActionDelete)
	}

	m.log.Infof("🗑️ Transmittal deleted: %s", id)
	m.emit(EventDeleted, t, "")
	return nil
}

// Generate numbers a draft and freezes it
func (m *Manager) Generate(ctx context.Context, id string) (*models.Transmittal, error) {
	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}
	if !Allowed(ActionGenerate, t.Status, m.strict) {
		return nil, rejection(ActionGenerate, t.Status)
	}

	now := m.now()
	seq, err := m.store.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, fmt.Errorf("generate transmittal: %w", err)
	}
	number := FormatNumber(now.Year(), seq)
	t.TransmittalNumber = &number
	t.Status = models.StatusGenerated
	t.GeneratedDate = &now

	// The sequence value is lost if another caller generated this draft first
	if err := m.store.SaveIfStatus(ctx, t, models.StatusDraft); err != nil {
		return nil, storeError(err, ActionGenerate)
	}

	m.log.Infof("📄 Transmittal generated: %s as %s", t.ID, number)
	m.emit(EventGenerated, t, "")
	m.archive(ctx, t)
	return t, nil
}

// Duplicate copies a transmittal of any state into a new draft. In opposite mode
// the copy switches between hardcopy and softcopy.
func (m *Manager) Duplicate(ctx context.Context, id, mode string) (*models.Transmittal, error) {
	src, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}

	dup := src.Clone()
	dup.ID = uuid.NewString()
	dup.Status = models.StatusDraft
	dup.TransmittalNumber = nil
	dup.GeneratedDate = nil
	dup.SendDetails = nil
	dup.ReceiveDetails = nil
	dup.SentStatus = nil
	dup.ReceivedStatus = nil
	dup.CreatedDate = m.now()
	dup.DocumentCount = len(dup.Documents)

	if mode == DuplicateOpposite {
		dup.SendMode = src.SendMode.Opposite()
		dup.Title = fmt.Sprintf("%s - %s Copy", src.Title, dup.SendMode)
	} else {
		dup.Title = src.Title + " - Copy"
	}

	if err := m.store.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate transmittal: %w", err)
	}

	m.log.Infof("📑 Transmittal duplicated: %s -> %s (%s)", src.ID, dup.ID, dup.SendMode)
	m.emit(EventDuplicated, dup, src.ID)
	return dup, nil
}

// RecordSend marks the transmittal as sent. Unless strict transitions are on,
// any state is accepted and the last write wins.
func (m *Manager) RecordSend(ctx context.Context, id string, details models.SendDetails, sentStatus string) (*models.Transmittal, error) {
	if strings.TrimSpace(sentStatus) == "" {
		return nil, validationError("sent_status: field required")
	}
	if err := Validate(details); err != nil {
		return nil, err
	}

	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}
	if !Allowed(ActionSend, t.Status, m.strict) {
		return nil, rejection(ActionSend, t.Status)
	}

	from := t.Status
	sd := datatypes.NewJSONType(details)
	t.Status = models.StatusSent
	t.SendDetails = &sd
	t.SentStatus = &sentStatus

	if err := m.save(ctx, t, from, ActionSend); err != nil {
		return nil, err
	}

	m.log.Infof("📤 Transmittal sent: %s (%s)", t.ID, sentStatus)
	m.emit(EventSent, t, "")
	return t, nil
}

// RecordReceive marks the transmittal as received and stores the receipt
func (m *Manager) RecordReceive(ctx context.Context, id string, details models.ReceiveDetails, receivedStatus string) (*models.Transmittal, error) {
	if strings.TrimSpace(receivedStatus) == "" {
		return nil, validationError("received_status: field required")
	}
	if err := Validate(details); err != nil {
		return nil, err
	}

	t, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "")
	}
	if !Allowed(ActionReceive, t.Status, m.strict) {
		return nil, rejection(ActionReceive, t.Status)
	}

	from := t.Status
	rd := datatypes.NewJSONType(details)
	t.Status = models.StatusReceived
	t.ReceiveDetails = &rd
	t.ReceivedStatus = &receivedStatus

	if err := m.save(ctx, t, from, ActionReceive); err != nil {
		return nil, err
	}

	m.log.Infof("📥 Transmittal received: %s (%s)", t.ID, receivedStatus)
	m.emit(EventReceived, t, "")
	return t, nil
}

// Render produces the printable PDF of a transmittal
func (m *Manager) Render(ctx context.Context, id string) ([]byte, *models.Transmittal, error) {
	t, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := m.render(t)
	if err != nil {
		return nil, nil, fmt.Errorf("render transmittal %s: %w", id, err)
	}
	return pdf, t, nil
}

func (m *Manager) save(ctx context.Context, t *models.Transmittal, from models.Status, action Action) error {
	var err error
	if m.strict {
		err = m.store.SaveIfStatus(ctx, t, from)
	} else {
		err = m.store.Save(ctx, t)
	}
	if err != nil {
		return storeError(err, action)
	}
	return nil
}

func (m *Manager) emit(typ EventType, t *models.Transmittal, sourceID string) {
	observability.RecordTransition(string(typ))
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(Event{
		Type:              typ,
		TransmittalID:     t.ID,
		Status:            t.Status,
		TransmittalNumber: t.TransmittalNumber,
		SourceID:          sourceID,
		At:                m.now(),
	})
}

func (m *Manager) archive(ctx context.Context, t *models.Transmittal) {
	if m.archiver == nil {
		return
	}
	pdf, err := m.render(t)
	if err != nil {
		m.log.Warnf("⚠️ Archive: failed to render %s: %v", t.ID, err)
		return
	}
	if err := m.archiver.Archive(ctx, t, pdf); err != nil {
		m.log.Warnf("⚠️ Archive: failed to store %s: %v", t.ID, err)
	}
}

// storeError maps store sentinels onto caller-facing errors. A lost conditional
// write is reported as the rejection the action would have met.
func storeError(err error, action Action) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return notFound()
	case errors.Is(err, storage.ErrStateChanged) && action != "":
		return rejection(action, "")
	default:
		return err
	}
}

// statusFilter maps the query value to a store filter. ok is false for a
// status no record can have.
func statusFilter(status string) (filter string, ok bool) {
	if status == "" || status == StatusAll {
		return "", true
	}
	return status, models.Status(status).Valid()
}
