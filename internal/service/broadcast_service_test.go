package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketmail/ticketmail/internal/model"
)

func newBroadcastService(t *testing.T, store *fakeBroadcastStore, syncer *fakeSyncer, auditor *fakeAuditor, sender *fakeSender) *BroadcastService {
	t.Helper()
	if syncer.created == nil {
		syncer.created = map[string]bool{}
	}
	if syncer.reactivated == nil {
		syncer.reactivated = map[string]bool{}
	}
	if syncer.errs == nil {
		syncer.errs = map[string]error{}
	}
	if sender.sendErr == nil {
		sender.sendErr = map[string]error{}
	}
	return NewBroadcastService(store, syncer, auditor, sender, testRenderer(t.TempDir()), "news@example.com", "TicketMail", testLogger())
}

func broadcastReq(recipients ...string) BroadcastRequest {
	return BroadcastRequest{
		Subject:    "Summer Festival",
		Message:    `{"template":"announcement","title":"Summer Festival","content":"One night only."}`,
		Recipients: recipients,
	}
}

func TestSendBroadcastAllDelivered(t *testing.T) {
	store := &fakeBroadcastStore{}
	sender := &fakeSender{}
	svc := newBroadcastService(t, store, &fakeSyncer{}, &fakeAuditor{}, sender)

	summary, err := svc.SendBroadcast(context.Background(), broadcastReq("a@x.com", "b@x.com", "c@x.com"), nil)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.RecipientsCount)
	assert.Equal(t, 3, summary.SentCount)
	assert.Equal(t, 0, summary.FailedCount)
	assert.Equal(t, model.BroadcastStatusSent, summary.Status)
	assert.Empty(t, summary.FailedEmails)
	assert.NotEmpty(t, summary.BroadcastID)

	// Log created pending, then finalized exactly once.
	require.NotNil(t, store.created)
	assert.Equal(t, 3, store.created.RecipientsCount)
	assert.True(t, store.finalized)
	assert.Equal(t, model.BroadcastStatusSent, store.finalizeStatus)

	// One connection for the whole run, closed afterwards.
	assert.Equal(t, 1, sender.opened)
	assert.True(t, sender.closed)
	assert.Len(t, sender.sent, 3)
}

func TestSendBroadcastPartialFailure(t *testing.T) {
	store := &fakeBroadcastStore{}
	sender := &fakeSender{sendErr: map[string]error{"b@x.com": errors.New("mailbox full")}}
	svc := newBroadcastService(t, store, &fakeSyncer{}, &fakeAuditor{}, sender)

	summary, err := svc.SendBroadcast(context.Background(), broadcastReq("a@x.com", "b@x.com", "c@x.com"), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.SentCount)
	assert.Equal(t, 1, summary.FailedCount)
	assert.Equal(t, model.BroadcastStatusPartial, summary.Status)
	require.Len(t, summary.FailedEmails, 1)
	assert.Equal(t, "b@x.com", summary.FailedEmails[0].Email)
	assert.Contains(t, summary.FailedEmails[0].Error, "mailbox full")

	// The invariant: every recipient accounted for.
	assert.Equal(t, summary.RecipientsCount, summary.SentCount+summary.FailedCount)
	assert.Equal(t, model.BroadcastStatusPartial, store.finalizeStatus)
}

func TestSendBroadcastAllFailed(t *testing.T) {
	store := &fakeBroadcastStore{}
	auditor := &fakeAuditor{}
	sender := &fakeSender{sendErr: map[string]error{
		"a@x.com": errors.New("rejected"),
		"b@x.com": errors.New("rejected"),
	}}
	svc := newBroadcastService(t, store, &fakeSyncer{}, auditor, sender)

	summary, err := svc.SendBroadcast(context.Background(), broadcastReq("a@x.com", "b@x.com"), nil)

	require.ErrorIs(t, err, ErrBroadcastFailed)
	require.NotNil(t, summary, "summary must accompany the error")
	assert.Equal(t, 0, summary.SentCount)
	assert.Equal(t, 2, summary.FailedCount)
	assert.Equal(t, model.BroadcastStatusFailed, summary.Status)
	assert.Len(t, summary.FailedEmails, 2)

	// No audit email when nothing was delivered.
	assert.Empty(t, auditor.created)
	assert.Equal(t, model.BroadcastStatusFailed, store.finalizeStatus)
}

func TestSendBroadcastValidation(t *testing.T) {
	store := &fakeBroadcastStore{}
	svc := newBroadcastService(t, store, &fakeSyncer{}, &fakeAuditor{}, &fakeSender{})

	cases := []BroadcastRequest{
		{Message: "m", Recipients: []string{"a@x.com"}},
		{Subject: "s", Recipients: []string{"a@x.com"}},
		{Subject: "s", Message: "m"},
	}
	for _, req := range cases {
		summary, err := svc.SendBroadcast(context.Background(), req, nil)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Nil(t, summary)
	}

	// Rejected before any side effect: no log row was ever created.
	assert.Nil(t, store.created)
}

func TestSendBroadcastSubscriberSync(t *testing.T) {
	syncer := &fakeSyncer{
		created:     map[string]bool{"new@x.com": true},
		reactivated: map[string]bool{"back@x.com": true},
		errs:        map[string]error{"bad@x.com": errors.New("db down")},
	}
	sender := &fakeSender{}
	svc := newBroadcastService(t, &fakeBroadcastStore{}, syncer, &fakeAuditor{}, sender)

	summary, err := svc.SendBroadcast(context.Background(),
		broadcastReq("new@x.com", "back@x.com", "old@x.com", "bad@x.com"), nil)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SubscribersAdded)
	assert.Equal(t, 1, summary.SubscribersReactivated)
	// A sync failure never blocks delivery.
	assert.Equal(t, 4, summary.SentCount)
	assert.Len(t, syncer.calls, 4)
}

func TestSendBroadcastTransportUnavailable(t *testing.T) {
	store := &fakeBroadcastStore{}
	sender := &fakeSender{openErr: errors.New("connection refused")}
	svc := newBroadcastService(t, store, &fakeSyncer{}, &fakeAuditor{}, sender)

	summary, err := svc.SendBroadcast(context.Background(), broadcastReq("a@x.com"), nil)

	require.ErrorIs(t, err, ErrTransportUnavailable)
	assert.Nil(t, summary)
	assert.True(t, store.markedFailed)
	assert.Empty(t, sender.sent)
}

func TestSendBroadcastAuditEmail(t *testing.T) {
	auditor := &fakeAuditor{}
	longMessage := strings.Repeat("x", 800)
	svc := newBroadcastService(t, &fakeBroadcastStore{}, &fakeSyncer{}, auditor, &fakeSender{})

	req := broadcastReq("a@x.com", "b@x.com")
	req.Message = longMessage
	_, err := svc.SendBroadcast(context.Background(), req, nil)

	require.NoError(t, err)
	require.Len(t, auditor.created, 1, "exactly one audit row per broadcast")
	assert.Equal(t, "Summer Festival", auditor.created[0].Subject)
	assert.Equal(t, "news@example.com", auditor.created[0].Recipient)
	assert.Len(t, auditor.created[0].Message, model.MaxStoredMessageLen)
}

func TestSendBroadcastSenderNameAndID(t *testing.T) {
	sender := &fakeSender{}
	svc := newBroadcastService(t, &fakeBroadcastStore{}, &fakeSyncer{}, &fakeAuditor{}, sender)

	req := broadcastReq("a@x.com")
	req.SenderName = "Box Office"
	req.BroadcastID = "bc-123"
	summary, err := svc.SendBroadcast(context.Background(), req, nil)

	require.NoError(t, err)
	assert.Equal(t, "bc-123", summary.BroadcastID)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Box Office <news@example.com>", sender.sent[0].From)
}

func TestSendBroadcastCloseErrorIgnored(t *testing.T) {
	sender := &fakeSender{closeErr: errors.New("already closed")}
	svc := newBroadcastService(t, &fakeBroadcastStore{}, &fakeSyncer{}, &fakeAuditor{}, sender)

	summary, err := svc.SendBroadcast(context.Background(), broadcastReq("a@x.com"), nil)

	require.NoError(t, err)
	assert.Equal(t, model.BroadcastStatusSent, summary.Status)
}
