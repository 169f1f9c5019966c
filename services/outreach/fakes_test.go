package outreach

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/DanishNadar/ttp-tracker/dto"
	"github.com/DanishNadar/ttp-tracker/internal/models"
	"github.com/DanishNadar/ttp-tracker/internal/repository"
	"github.com/DanishNadar/ttp-tracker/services/smtp"
)

type memoryDataset struct {
	rows    []dto.ScanRow
	columns map[string]bool
	saves   int
	updates map[int]dto.SentUpdate
}

func newMemoryDataset(rows ...dto.ScanRow) *memoryDataset {
	for i := range rows {
		rows[i].Row = i + 2
	}
	return &memoryDataset{rows: rows, columns: map[string]bool{"Message ID": true}, updates: map[int]dto.SentUpdate{}}
}

func (d *memoryDataset) Path() string { return "memory.xlsx" }

func (d *memoryDataset) HasColumn(name string) bool { return d.columns[name] }

func (d *memoryDataset) Rows() ([]dto.ScanRow, error) {
	out := make([]dto.ScanRow, len(d.rows))
	copy(out, d.rows)
	return out, nil
}

func (d *memoryDataset) MarkSent(row int, update dto.SentUpdate) error {
	r := &d.rows[row-2]
	r.EmailSent = true
	r.EmailOpen = false
	r.Email = update.Email
	r.MessageID = update.MessageID
	d.updates[row] = update
	return nil
}

func (d *memoryDataset) MarkOpened(row int) error {
	d.rows[row-2].EmailOpen = true
	return nil
}

func (d *memoryDataset) Save() error {
	d.saves++
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*smtp.OutboundEmail
}

func (m *recordingMailer) Send(_ context.Context, email *smtp.OutboundEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	return nil
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, email *smtp.OutboundEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type memoryMessageRepository struct {
	messages map[string]*models.Message
	order    []string
	err      error
}

func newMemoryMessageRepository() *memoryMessageRepository {
	return &memoryMessageRepository{messages: map[string]*models.Message{}}
}

func (r *memoryMessageRepository) Create(_ context.Context, message *models.Message) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.messages[message.MessageID]; ok {
		return nil
	}
	r.messages[message.MessageID] = message
	r.order = append(r.order, message.MessageID)
	return nil
}

func (r *memoryMessageRepository) GetByID(_ context.Context, id string) (*models.Message, error) {
	if m, ok := r.messages[id]; ok {
		return m, nil
	}
	return nil, repository.ErrMessageNotFound
}

func (r *memoryMessageRepository) List(_ context.Context) ([]*models.Message, error) {
	out := make([]*models.Message, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.messages[id])
	}
	return out, nil
}

type countingSnapshotter struct {
	calls int
}

func (s *countingSnapshotter) Snapshot(context.Context, string) error {
	s.calls++
	return nil
}
