package transmittal

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-1103/transmittal-craft/internal/models"
	"github.com/vijay-1103/transmittal-craft/internal/storage"
)

var numberPattern = regexp.MustCompile(`^TRN-\d{4}-\d{3,}$`)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type recordingArchiver struct {
	mu       sync.Mutex
	archived map[string]int
	err      error
}

func (a *recordingArchiver) Archive(ctx context.Context, t *models.Transmittal, pdf []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.archived == nil {
		a.archived = map[string]int{}
	}
	a.archived[t.ID] = len(pdf)
	return a.err
}

type fixture struct {
	m     *Manager
	store *storage.MemoryStore
	pub   *recordingPublisher

	mu    sync.Mutex
	clock time.Time
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	f := &fixture{
		store: storage.NewMemoryStore(),
		pub:   &recordingPublisher{},
		clock: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	f.m = NewManager(f.store, Options{
		StrictTransitions: strict,
		Publisher:         f.pub,
		Now: func() time.Time {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.clock = f.clock.Add(time.Second)
			return f.clock
		},
		Renderer: func(t *models.Transmittal) ([]byte, error) { return []byte("%PDF-fake " + t.ID), nil },
	})
	return f
}

func createInput(docs ...models.DocumentItem) models.TransmittalCreate {
	date := models.NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	project := "Greenfield Residential Complex"
	if docs == nil {
		docs = []models.DocumentItem{}
	}
	return models.TransmittalCreate{
		TransmittalType:   "Drawing",
		Department:        "Architecture",
		TransmittalDate:   &date,
		SendTo:            "Client",
		Salutation:        "Mr",
		RecipientName:     "John Anderson",
		SenderName:        "Sarah Wilson",
		SenderDesignation: "Project Architect",
		SendMode:          models.SendModeSoftcopy,
		Documents:         docs,
		Title:             "Residential Project Plans",
		ProjectName:       &project,
	}
}

func doc(no string) models.DocumentItem {
	return models.DocumentItem{DocumentNo: no, Title: "Sheet " + no, Revision: 1, Copies: 2, Action: "for approval"}
}

func (f *fixture) create(t *testing.T, docs ...models.DocumentItem) *models.Transmittal {
	t.Helper()
	tr, err := f.m.Create(context.Background(), createInput(docs...))
	require.NoError(t, err)
	return tr
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

func TestCreateDraft(t *testing.T) {
	f := newFixture(t, false)
	tr := f.create(t, doc("A-001"), doc("A-002"))

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, models.StatusDraft, tr.Status)
	assert.Equal(t, 2, tr.DocumentCount)
	assert.Nil(t, tr.TransmittalNumber)
	assert.Nil(t, tr.GeneratedDate)
	assert.False(t, tr.CreatedDate.IsZero())

	stored, err := f.m.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Title, stored.Title)
	assert.Equal(t, []EventType{EventCreated}, f.pub.types())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	in := createInput()
	in.RecipientName = ""
	in.SendMode = "Carrier pigeon"
	_, err := f.m.Create(ctx, in)
	assertKind(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "recipient_name: field required")
	assert.Contains(t, err.Error(), "send_mode: must be one of")

	in = createInput(models.DocumentItem{DocumentNo: "A-1", Title: "x", Copies: 0})
	_, err = f.m.Create(ctx, in)
	assertKind(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "documents[0].copies")

	in = createInput()
	in.TransmittalDate = nil
	_, err = f.m.Create(ctx, in)
	assertKind(t, err, ErrValidation)

	in = createInput()
	in.Documents = nil
	_, err = f.m.Create(ctx, in)
	assertKind(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "documents: field required")

	n, err := f.m.Count(ctx, StatusAll)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.pub.types())
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	tr := f.create(t)
	assert.Equal(t, 0, tr.DocumentCount)
	assert.Equal(t, models.StatusDraft, tr.Status)

	gen, err := f.m.Generate(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGenerated, gen.Status)
	require.NotNil(t, gen.TransmittalNumber)
	assert.Regexp(t, numberPattern, *gen.TransmittalNumber)
	assert.NotNil(t, gen.GeneratedDate)

	_, err = f.m.Update(ctx, tr.ID, models.NewPatch().Title("late edit").Build())
	assertKind(t, err, ErrInvalidState)
	assert.EqualError(t, err, "Cannot edit generated transmittal")

	err = f.m.Delete(ctx, tr.ID)
	assertKind(t, err, ErrInvalidState)
}

func TestGenerateTwiceKeepsNumber(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	tr := f.create(t, doc("A-001"))

	first, err := f.m.Generate(ctx, tr.ID)
	require.NoError(t, err)

	_, err = f.m.Generate(ctx, tr.ID)
	assertKind(t, err, ErrInvalidState)
	assert.EqualError(t, err, "Transmittal already generated")

	again, err := f.m.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.TransmittalNumber, *again.TransmittalNumber)
}

func TestGenerateNumbersArePerYearSequence(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	var numbers []string
	for i := 0; i < 3; i++ {
		tr := f.create(t)
		gen, err := f.m.Generate(ctx, tr.ID)
		require.NoError(t, err)
		numbers = append(numbers, *gen.TransmittalNumber)
	}
	assert.Equal(t, []string{"TRN-2024-001", "TRN-2024-002", "TRN-2024-003"}, numbers)

	f.mu.Lock()
	f.clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.mu.Unlock()
	tr := f.create(t)
	gen, err := f.m.Generate(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRN-2025-001", *gen.TransmittalNumber)
}

func TestConcurrentGenerateOnDistinctDraftsGivesUniqueNumbers(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	const n = 30
	ids := make([]string, n)
	for i := range ids {
		ids[i] = f.create(t).ID
	}

	var mu sync.Mutex
	seen := map[string]bool{}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			gen, err := f.m.Generate(ctx, id)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[*gen.TransmittalNumber], "duplicate %s", *gen.TransmittalNumber)
			seen[*gen.TransmittalNumber] = true
		}(id)
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestConcurrentGenerateOnSameDraftSucceedsOnce(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := f.create(t).ID

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, rejections := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.m.Generate(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, ErrInvalidState) {
				rejections++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, rejections)
}

func TestUpdateDraft(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	tr := f.create(t, doc("A-001"))

	updated, err := f.m.Update(ctx, tr.ID, models.NewPatch().
		Title("Revised").
		Documents([]models.DocumentItem{doc("A-001"), doc("A-002"), doc("A-003")}).
		Build())
	require.NoError(t, err)
	assert.Equal(t, "Revised", updated.Title)
	assert.Equal(t, 3, updated.DocumentCount)
	assert.Equal(t, "John Anderson", updated.RecipientName)

	stored, err := f.m.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.DocumentCount)

	// An empty patch is a no-op that still returns the record
	same, err := f.m.Update(ctx, tr.ID, models.TransmittalPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Revised", same.Title)
	assert.Equal(t, []EventType{EventCreated, EventUpdated}, f.pub.types())
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	tr := f.create(t)

	_, err := f.m.Update(ctx, tr.ID, models.NewPatch().Title("").Build())
	assertKind(t, err, ErrValidation)

	_, err = f.m.Update(ctx, tr.ID, models.NewPatch().SendMode("Fax").Build())
	assertKind(t, err, ErrValidation)

	_, err = f.m.Update(ctx, tr.ID, models.NewPatch().Documents([]models.DocumentItem{{DocumentNo: "X"}}).Build())
	assertKind(t, err, ErrValidation)

	// Existence and state are checked before the payload
	_, err = f.m.Update(ctx, "missing", models.NewPatch().Title("").Build())
	assertKind(t, err, ErrNotFound)

	_, err = f.m.Generate(ctx, tr.ID)
	require.NoError(t, err)
	_, err = f.m.Update(ctx, tr.ID, models.NewPatch().Title("").Build())
	assertKind(t, err, ErrInvalidState)
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.m.Get(ctx, "missing")
	assertKind(t, err, ErrNotFound)
	assert.EqualError(t, err, "Transmittal not found")

	_, err = f.m.Update(ctx, "missing", models.NewPatch().Title("x").Build())
	assertKind(t, err, ErrNotFound)

	assertKind(t, f.m.Delete(ctx, "missing"), ErrNotFound)

	_, err = f.m.Generate(ctx, "missing")
	assertKind(t, err, ErrNotFound)

	_, err = f.m.Duplicate(ctx, "missing", DuplicateSame)
	assertKind(t, err, ErrNotFound)

	_, err = f.m.RecordSend(ctx, "missing", models.SendDetails{}, "Sent")
	assertKind(t, err, ErrNotFound)

	_, err = f.m.RecordReceive(ctx, "missing", models.ReceiveDetails{}, "Received")
	assertKind(t, err, ErrNotFound)

	_, _, err = f.m.Render(ctx, "missing")
	assertKind(t, err, ErrNotFound)
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	tr := f.create(t)

	require.NoError(t, f.m.Delete(ctx, tr.ID))
	_, err := f.m.Get(ctx, tr.ID)
	assertKind(t, err, ErrNotFound)
	assert.Equal(t, []EventType{EventCreated, EventDeleted}, f.pub.types())
}

func TestDuplicateOpposite(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	src := f.create(t, doc("A-001"))
	_, err := f.m.Generate(ctx, src.ID)
	require.NoError(t, err)
	_, err = f.m.RecordSend(ctx, src.ID, models.SendDetails{}, "Sent")
	require.NoError(t, err)

	dup, err := f.m.Duplicate(ctx, src.ID, DuplicateOpposite)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, models.StatusDraft, dup.Status)
	assert.Equal(t, models.SendModeHardcopy, dup.SendMode)
	assert.Equal(t, "Residential Project Plans - Hardcopy Copy", dup.Title)
	assert.Nil(t, dup.TransmittalNumber)
	assert.Nil(t, dup.GeneratedDate)
	assert.Nil(t, dup.SendDetails)
	assert.Nil(t, dup.ReceiveDetails)
	assert.Nil(t, dup.SentStatus)
	assert.Nil(t, dup.ReceivedStatus)
	assert.Equal(t, 1, dup.DocumentCount)

	orig, err := f.m.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, orig.Status)
	assert.Equal(t, models.SendModeSoftcopy, orig.SendMode)
	assert.Equal(t, "Residential Project Plans", orig.Title)
}

func TestDuplicateSameAndUnknownMode(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	src := f.create(t)

	for _, mode := range []string{DuplicateSame, "whatever"} {
		dup, err := f.m.Duplicate(ctx, src.ID, mode)
		require.NoError(t, err)
		assert.Equal(t, models.SendModeSoftcopy, dup.SendMode)
		assert.Equal(t, "Residential Project Plans - Copy", dup.Title)
	}
}

func TestSendAndReceivePermissive(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	tr := f.create(t)

	person := "Receptionist"
	sent, err := f.m.RecordSend(ctx, tr.ID, models.SendDetails{DeliveryPerson: &person}, "Sent")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, sent.Status)
	require.NotNil(t, sent.SendDetails)
	assert.Equal(t, "Receptionist", *sent.SendDetails.Data().DeliveryPerson)
	assert.Equal(t, "Sent", *sent.SentStatus)

	receipt := "aGVsbG8="
	received, err := f.m.RecordReceive(ctx, tr.ID, models.ReceiveDetails{ReceiptFile: &receipt}, "Received")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, received.Status)
	assert.Equal(t, "Received", *received.ReceivedStatus)
	assert.Equal(t, receipt, *received.ReceiveDetails.Data().ReceiptFile)
	assert.NotNil(t, received.SendDetails, "send details survive receive")

	assert.Equal(t, []EventType{EventCreated, EventSent, EventReceived}, f.pub.types())
}

func TestSendRequiresStatus(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	tr := f.create(t)

	_, err := f.m.RecordSend(ctx, tr.ID, models.SendDetails{}, "  ")
	assertKind(t, err, ErrValidation)
	_, err = f.m.RecordReceive(ctx, tr.ID, models.ReceiveDetails{}, "")
	assertKind(t, err, ErrValidation)

	bad := "25:99"
	_, err = f.m.RecordReceive(ctx, tr.ID, models.ReceiveDetails{ReceivedTime: &bad}, "Received")
	assertKind(t, err, ErrValidation)
}

func TestStrictTransitions(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	tr := f.create(t)

	_, err := f.m.RecordSend(ctx, tr.ID, models.SendDetails{}, "Sent")
	assertKind(t, err, ErrInvalidState)
	assert.EqualError(t, err, "Cannot send transmittal in draft state")

	_, err = f.m.RecordReceive(ctx, tr.ID, models.ReceiveDetails{}, "Received")
	assertKind(t, err, ErrInvalidState)

	_, err = f.m.Generate(ctx, tr.ID)
	require.NoError(t, err)
	_, err = f.m.RecordReceive(ctx, tr.ID, models.ReceiveDetails{}, "Received")
	require.NoError(t, err)

	_, err = f.m.RecordSend(ctx, tr.ID, models.SendDetails{}, "Sent")
	assertKind(t, err, ErrInvalidState)
}

func TestListAndCount(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.create(t)
	b := f.create(t)
	c := f.create(t)
	_, err := f.m.Generate(ctx, b.ID)
	require.NoError(t, err)

	all, err := f.m.List(ctx, ListQuery{Status: StatusAll, Limit: 100})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{c.ID, b.ID, a.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	drafts, err := f.m.List(ctx, ListQuery{Status: "draft", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, drafts, 2)
	for _, d := range drafts {
		assert.Equal(t, models.StatusDraft, d.Status)
	}

	unknown, err := f.m.List(ctx, ListQuery{Status: "archived", Limit: 100})
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)

	beyond, err := f.m.List(ctx, ListQuery{Skip: 10, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, beyond)

	zero, err := f.m.List(ctx, ListQuery{Limit: 0})
	require.NoError(t, err)
	assert.NotNil(t, zero)
	assert.Empty(t, zero)

	_, err = f.m.List(ctx, ListQuery{Skip: -1, Limit: 10})
	assertKind(t, err, ErrValidation)

	n, err := f.m.Count(ctx, "generated")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = f.m.Count(ctx, StatusAll)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	n, err = f.m.Count(ctx, "nonsense")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListLimitClamp(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store, Options{MaxListLimit: 2})
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := m.Create(ctx, createInput())
		require.NoError(t, err)
	}
	items, err := m.List(ctx, ListQuery{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGenerateArchivesPDF(t *testing.T) {
	arch := &recordingArchiver{err: errors.New("bucket offline")}
	store := storage.NewMemoryStore()
	m := NewManager(store, Options{
		Archiver: arch,
		Renderer: func(t *models.Transmittal) ([]byte, error) { return []byte("%PDF-1.3"), nil },
	})
	ctx := context.Background()
	tr, err := m.Create(ctx, createInput())
	require.NoError(t, err)

	// Archive failures are logged, not returned
	gen, err := m.Generate(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusGenerated, gen.Status)
	assert.Equal(t, len("%PDF-1.3"), arch.archived[tr.ID])
}

func TestRender(t *testing.T) {
	f := newFixture(t, false)
	tr := f.create(t)
	pdf, got, err := f.m.Render(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)
	assert.Equal(t, "%PDF-fake "+tr.ID, string(pdf))
}
