package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketmail/ticketmail/internal/config"
	"github.com/ticketmail/ticketmail/internal/email"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/model"
	"github.com/ticketmail/ticketmail/internal/newsletter"
	"github.com/ticketmail/ticketmail/internal/repository"
	"github.com/ticketmail/ticketmail/internal/service"
)

// --- fakes ---

type memEmailStore struct {
	emails map[int64]*model.Email
	nextID int64
}

func newMemEmailStore() *memEmailStore {
	return &memEmailStore{emails: map[int64]*model.Email{}}
}

func (s *memEmailStore) Create(ctx context.Context, e *model.Email) error {
	s.nextID++
	e.ID = s.nextID
	cp := *e
	s.emails[e.ID] = &cp
	return nil
}

func (s *memEmailStore) GetByID(ctx context.Context, id int64, deviceID *string) (*model.Email, error) {
	e, ok := s.emails[id]
	if !ok || !deviceMatch(e.DeviceID, deviceID) {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (s *memEmailStore) List(ctx context.Context, deviceID *string) ([]*model.Email, error) {
	var out []*model.Email
	for _, e := range s.emails {
		if deviceMatch(e.DeviceID, deviceID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memEmailStore) Update(ctx context.Context, id int64, deviceID *string, upd repository.EmailUpdate) (*model.Email, error) {
	e, err := s.GetByID(ctx, id, deviceID)
	if err != nil {
		return nil, err
	}
	if upd.Subject != nil {
		e.Subject = *upd.Subject
	}
	if upd.Message != nil {
		e.Message = *upd.Message
	}
	return e, nil
}

func (s *memEmailStore) Delete(ctx context.Context, id int64, deviceID *string) error {
	if _, err := s.GetByID(ctx, id, deviceID); err != nil {
		return err
	}
	delete(s.emails, id)
	return nil
}

func deviceMatch(rowDevice, scope *string) bool {
	if scope == nil {
		return true
	}
	return rowDevice != nil && *rowDevice == *scope
}

type memSubscriberStore struct {
	subs   map[int64]*model.Subscriber
	nextID int64
}

func newMemSubscriberStore() *memSubscriberStore {
	return &memSubscriberStore{subs: map[int64]*model.Subscriber{}}
}

func (s *memSubscriberStore) Upsert(ctx context.Context, addr string, deviceID *string) (*model.Subscriber, bool, bool, error) {
	for _, sub := range s.subs {
		if sub.Email == addr {
			if !sub.IsActive {
				sub.IsActive = true
				return sub, false, true, nil
			}
			return sub, false, false, nil
		}
	}
	s.nextID++
	sub := &model.Subscriber{ID: s.nextID, Email: addr, DeviceID: deviceID, IsActive: true}
	s.subs[sub.ID] = sub
	return sub, true, false, nil
}

func (s *memSubscriberStore) GetByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	sub, ok := s.subs[id]
	if !ok || !deviceMatch(sub.DeviceID, deviceID) {
		return nil, repository.ErrNotFound
	}
	return sub, nil
}

func (s *memSubscriberStore) GetByEmail(ctx context.Context, addr string) (*model.Subscriber, error) {
	for _, sub := range s.subs {
		if sub.Email == addr {
			return sub, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memSubscriberStore) ListActive(ctx context.Context, deviceID *string) ([]*model.Subscriber, error) {
	var out []*model.Subscriber
	for _, sub := range s.subs {
		if sub.IsActive && deviceMatch(sub.DeviceID, deviceID) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *memSubscriberStore) Update(ctx context.Context, id int64, deviceID *string, upd repository.SubscriberUpdate) (*model.Subscriber, error) {
	sub, err := s.GetByID(ctx, id, deviceID)
	if err != nil {
		return nil, err
	}
	if upd.Email != nil {
		sub.Email = *upd.Email
	}
	if upd.IsActive != nil {
		sub.IsActive = *upd.IsActive
	}
	return sub, nil
}

func (s *memSubscriberStore) DeactivateByID(ctx context.Context, id int64, deviceID *string) (*model.Subscriber, error) {
	sub, err := s.GetByID(ctx, id, deviceID)
	if err != nil {
		return nil, err
	}
	sub.IsActive = false
	return sub, nil
}

func (s *memSubscriberStore) DeactivateByEmail(ctx context.Context, addr string) (*model.Subscriber, error) {
	sub, err := s.GetByEmail(ctx, addr)
	if err != nil {
		return nil, err
	}
	sub.IsActive = false
	return sub, nil
}

type memBroadcastStore struct {
	logs   []*model.BroadcastLog
	nextID int64
}

func (s *memBroadcastStore) Create(ctx context.Context, log *model.BroadcastLog) error {
	s.nextID++
	log.ID = s.nextID
	log.Status = model.BroadcastStatusPending
	s.logs = append(s.logs, log)
	return nil
}

func (s *memBroadcastStore) Finalize(ctx context.Context, id int64, sent, failed int, status model.BroadcastStatus) error {
	for _, l := range s.logs {
		if l.ID == id {
			l.SentCount = sent
			l.FailedCount = failed
			l.Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memBroadcastStore) MarkFailed(ctx context.Context, id int64) error {
	return s.Finalize(ctx, id, 0, 0, model.BroadcastStatusFailed)
}

func (s *memBroadcastStore) List(ctx context.Context, deviceID *string) ([]*model.BroadcastLog, error) {
	return s.logs, nil
}

func (s *memBroadcastStore) GetByBroadcastID(ctx context.Context, broadcastID string) (*model.BroadcastLog, error) {
	for _, l := range s.logs {
		if l.BroadcastID == broadcastID {
			return l, nil
		}
	}
	return nil, repository.ErrNotFound
}

type stubSender struct {
	sendErr error
	sent    []email.Message
}

func (s *stubSender) Send(ctx context.Context, msg email.Message) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

// --- fixture ---

type fixture struct {
	h          *Handler
	emailStore *memEmailStore
	subStore   *memSubscriberStore
	bcastStore *memBroadcastStore
	sender     *stubSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New("disabled", "json")
	cfg := &config.Config{}
	renderer := newsletter.NewRenderer("TicketMail", t.TempDir(), "https://app.example.com/unsubscribe")

	emailStore := newMemEmailStore()
	subStore := newMemSubscriberStore()
	bcastStore := &memBroadcastStore{}
	sender := &stubSender{}
	batch := email.AsBatchSender(sender)

	emailSvc := service.NewEmailService(emailStore, batch, renderer, "news@example.com", "TicketMail", log)
	subSvc := service.NewSubscriberService(subStore, nil, log)
	bcastSvc := service.NewBroadcastService(bcastStore, subStore, emailStore, batch, renderer, "news@example.com", "TicketMail", log)

	return &fixture{
		h:          New(nil, nil, log, cfg, emailSvc, subSvc, bcastSvc),
		emailStore: emailStore,
		subStore:   subStore,
		bcastStore: bcastStore,
		sender:     sender,
	}
}

func doJSON(handlerFn http.HandlerFunc, method, target, body string, pathValues map[string]string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handlerFn(rr, req)
	return rr
}

// --- tests ---

func TestCreateEmailHandler(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.CreateEmail, http.MethodPost, "/emails/",
		`{"email":"fan@example.com","subject":"Hi","message":"Body"}`, nil, nil)

	require.Equal(t, http.StatusCreated, rr.Code)
	var rec model.Email
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "fan@example.com", rec.Recipient)
	assert.Len(t, f.sender.sent, 1)
}

func TestCreateEmailHandlerValidation(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.CreateEmail, http.MethodPost, "/emails/", `{"email":"fan@example.com"}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(f.h.CreateEmail, http.MethodPost, "/emails/", `not json`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateEmailHandlerStampsDevice(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.CreateEmail, http.MethodPost, "/emails/",
		`{"email":"fan@example.com","subject":"Hi"}`, nil,
		map[string]string{"X-Device-ID": "dev-1"})

	require.Equal(t, http.StatusCreated, rr.Code)
	stored := f.emailStore.emails[1]
	require.NotNil(t, stored.DeviceID)
	assert.Equal(t, "dev-1", *stored.DeviceID)
}

func TestGetEmailHandlerNotFound(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.GetEmail, http.MethodGet, "/emails/99/", "", map[string]string{"id": "99"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(f.h.GetEmail, http.MethodGet, "/emails/abc/", "", map[string]string{"id": "abc"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetEmailHandlerDeviceScope(t *testing.T) {
	f := newFixture(t)
	dev := "dev-1"
	f.emailStore.Create(context.Background(), &model.Email{DeviceID: &dev, Subject: "s", Recipient: "a@x.com"})

	// Wrong device cannot see the record.
	rr := doJSON(f.h.GetEmail, http.MethodGet, "/emails/1/", "", map[string]string{"id": "1"},
		map[string]string{"X-Device-ID": "dev-2"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Unscoped access can.
	rr = doJSON(f.h.GetEmail, http.MethodGet, "/emails/1/", "", map[string]string{"id": "1"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSendBroadcastHandler(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.SendBroadcast, http.MethodPost, "/broadcast/send",
		`{"subject":"S","message":"M","recipients":["a@x.com","b@x.com"]}`, nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var summary service.BroadcastSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.SentCount)
	assert.Equal(t, model.BroadcastStatusSent, summary.Status)
	assert.Equal(t, 2, summary.SubscribersAdded)
}

func TestSendBroadcastHandlerValidation(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.SendBroadcast, http.MethodPost, "/broadcast/send",
		`{"subject":"S","message":"M","recipients":[]}`, nil, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, f.bcastStore.logs, "no log row for a rejected request")
}

func TestSendBroadcastHandlerAllFailed(t *testing.T) {
	f := newFixture(t)
	f.sender.sendErr = errors.New("rejected")

	rr := doJSON(f.h.SendBroadcast, http.MethodPost, "/broadcast/send",
		`{"subject":"S","message":"M","recipients":["a@x.com"]}`, nil, nil)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	// The structured summary still comes back.
	var summary service.BroadcastSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, model.BroadcastStatusFailed, summary.Status)
	require.Len(t, summary.FailedEmails, 1)
	assert.Equal(t, "a@x.com", summary.FailedEmails[0].Email)
}

func TestCreateSubscriberHandler(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.CreateSubscriber, http.MethodPost, "/subscribers/", `{"email":"a@x.com"}`, nil, nil)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// Same address again: idempotent, 200.
	rr = doJSON(f.h.CreateSubscriber, http.MethodPost, "/subscribers/", `{"email":"a@x.com"}`, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(f.h.CreateSubscriber, http.MethodPost, "/subscribers/", `{}`, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListSubscribersHandlerEmptyArray(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.ListSubscribers, http.MethodGet, "/subscribers/", "", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestDeleteSubscriberHandlerByEmail(t *testing.T) {
	f := newFixture(t)
	f.subStore.Upsert(context.Background(), "a@x.com", nil)

	rr := doJSON(f.h.DeleteSubscriber, http.MethodDelete, "/subscribers/a@x.com/", "",
		map[string]string{"idOrEmail": "a@x.com"}, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	sub, err := f.subStore.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, sub.IsActive, "soft delete, row kept")
}

func TestGetSubscriberHandlerByIDAndEmail(t *testing.T) {
	f := newFixture(t)
	f.subStore.Upsert(context.Background(), "a@x.com", nil)

	rr := doJSON(f.h.GetSubscriber, http.MethodGet, "/subscribers/1/", "",
		map[string]string{"idOrEmail": "1"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(f.h.GetSubscriber, http.MethodGet, "/subscribers/a@x.com/", "",
		map[string]string{"idOrEmail": "a@x.com"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(f.h.GetSubscriber, http.MethodGet, "/subscribers/missing@x.com/", "",
		map[string]string{"idOrEmail": "missing@x.com"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutesHandler(t *testing.T) {
	f := newFixture(t)

	rr := doJSON(f.h.Routes, http.MethodGet, "/api/", "", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var routes []RouteInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &routes))
	assert.NotEmpty(t, routes)
}
