package service

import (
	"context"

	"github.com/ticketmail/ticketmail/internal/email"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/newsletter"
	"github.com/ticketmail/ticketmail/internal/repository"
)

func testLogger() *logger.Logger {
	return logger.New("disabled", "json")
}

func testRenderer(dir string) *newsletter.Renderer {
	return newsletter.NewRenderer("TicketMail", dir, "https://app.example.com/unsubscribe")
}

// --- broadcast store fake ---

type fakeBroadcastStore struct {
	created        *model.BroadcastLog
	createErr      error
	finalized      bool
	finalizeSent   int
	finalizeFailed int
	finalizeStatus model.BroadcastStatus
	markedFailed   bool
	logs           []*model.BroadcastLog
}

func (f *fakeBroadcastStore) Create(ctx context.Context, log *model.BroadcastLog) error {
	if f.createErr != nil {
		return f.createErr
	}
	log.ID = 1
	log.Status = model.BroadcastStatusPending
	f.created = log
	return nil
}

func (f *fakeBroadcastStore) Finalize(ctx context.Context, id int64, sent, failed int, status model.BroadcastStatus) error {
	f.finalized = true
	f.finalizeSent = sent
	f.finalizeFailed = failed
	f.finalizeStatus = status
	return nil
}

func (f *fakeBroadcastStore) MarkFailed(ctx context.Context, id int64) error {
	f.markedFailed = true
	return nil
}

func (f *fakeBroadcastStore) List(ctx context.Context, deviceID *string) ([]*model.BroadcastLog, error) {
	return f.logs, nil
}

func (f *fakeBroadcastStore) GetByBroadcastID(ctx context.Context, broadcastID string) (*model.BroadcastLog, error) {
	for _, l := range f.logs {
		if l.BroadcastID == broadcastID {
			return l, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- subscriber syncer fake ---

type fakeSyncer struct {
	created     map[string]bool
	reactivated map[string]bool
	errs        map[string]error
	calls       []string
}

func (f *fakeSyncer) Upsert(ctx context.Context, addr string, deviceID *string) (*model.Subscriber, bool, bool, error) {
	f.calls = append(f.calls, addr)
	if err := f.errs[addr]; err != nil {
		return nil, false, false, err
	}
	return &model.Subscriber{Email: addr, IsActive: true}, f.created[addr], f.reactivated[addr], nil
}

// --- email auditor fake ---

type fakeAuditor struct {
	created   []*model.Email
	createErr error
}

func (f *fakeAuditor) Create(ctx context.Context, e *model.Email) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = int64(len(f.created) + 1)
	f.created = append(f.created, e)
	return nil
}

// --- mail transport fake ---

type fakeSender struct {
	openErr  error
	closeErr error
	sendErr  map[string]error
	sent     []email.Message
	opened   int
	closed   bool
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if err := f.sendErr[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) OpenBatch(ctx context.Context) (email.Batch, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	return &fakeBatch{s: f}, nil
}

type fakeBatch struct {
	s *fakeSender
}

func (b *fakeBatch) Send(ctx context.Context, msg email.Message) error {
	return b.s.Send(ctx, msg)
}

func (b *fakeBatch) Close() error {
	b.s.closed = true
	return b.s.closeErr
}

// --- email store fake ---

type fakeEmailStore struct {
	fakeAuditor
	emails map[int64]*model.Email
}

func (f *fakeEmailStore) GetByID(ctx context.Context, id int64, deviceID *string) (*model.Email, error) {
	if e, ok := f.emails[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeEmailStore) List(ctx context.Context, deviceID *string) ([]*model.Email, error) {
	var out []*model.Email
	for _, e := range f.emails {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmailStore) Update(ctx context.Context, id int64, deviceID *string, upd repository.EmailUpdate) (*model.Email, error) {
	e, ok := f.emails[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Subject != nil {
		e.Subject = *upd.Subject
	}
	if upd.Message != nil {
		e.Message = *upd.Message
	}
	return e, nil
}

func (f *fakeEmailStore) Delete(ctx context.Context, id int64, deviceID *string) error {
	if _, ok := f.emails[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.emails, id)
	return nil
}

// --- subscriber store fake ---

type fakeSubscriberStore struct {
	fakeSyncer
	subs map[int64]*model.Subscriber
}

func (f *fakeSubscriberStore) GetByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	if s, ok := f.subs[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubscriberStore) GetByEmail(ctx context.Context, addr string) (*model.Subscriber, error) {
	for _, s := range f.subs {
		if s.Email == addr {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubscriberStore) ListActive(ctx context.Context, deviceID *string) ([]*model.Subscriber, error) {
	var out []*model.Subscriber
	for _, s := range f.subs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriberStore) Update(ctx context.Context, id int64, deviceID *string, upd repository.SubscriberUpdate) (*model.Subscriber, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Email != nil {
		s.Email = *upd.Email
	}
	if upd.IsActive != nil {
		s.IsActive = *upd.IsActive
	}
	return s, nil
}

func (f *fakeSubscriberStore) DeactivateByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	s, ok := f.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.IsActive = false
	return s, nil
}

func (f *fakeSubscriberStore) DeactivateByEmail(ctx context.Context, addr string) (*model.Subscriber, error) {
	for _, s := range f.subs {
		if s.Email == addr {
			s.IsActive = false
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}
