package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"airwise-backend/internal/events"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
	"airwise-backend/internal/store/storetest"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

type mockMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *mockMailer) SendMail(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject)
	return m.err
}

func (m *mockMailer) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type mockPublisher struct {
	published chan events.NotificationCreated
}

func (m *mockPublisher) PublishNotification(_ context.Context, e events.NotificationCreated) error {
	m.published <- e
	return nil
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

func seedSubscription(t *testing.T, s store.Store, endpoint, userID string) {
	t.Helper()
	require.NoError(t, s.SaveSubscription(context.Background(), &model.PushSubscription{
		Endpoint:  endpoint,
		P256DH:    "p256dh",
		Auth:      "auth",
		UserID:    userID,
		CreatedAt: time.Now(),
	}))
}

func TestWorkerPool_Dispatch(t *testing.T) {
	s, _ := storetest.New(t)
	wp := NewWorkerPool(1, s, &webpush.Options{}, nil, nil, zap.NewNop())

	wp.Dispatch(Delivery{NotificationID: "n-1"})

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, "n-1", job.NotificationID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchDropsWhenFull(t *testing.T) {
	s, _ := storetest.New(t)
	wp := NewWorkerPool(1, s, nil, nil, nil, zap.NewNop())

	for i := 0; i < cap(wp.Jobs())+5; i++ {
		wp.Dispatch(Delivery{})
	}
	assert.Len(t, wp.Jobs(), cap(wp.Jobs()))
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	s, _ := storetest.New(t)
	mailer := &mockMailer{}
	publisher := &mockPublisher{published: make(chan events.NotificationCreated, 10)}
	wp := NewWorkerPool(1, s, &webpush.Options{}, mailer, publisher, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	userID := storetest.Sys.Key("tenant@example.com")

	t.Run("delivers to every channel", func(t *testing.T) {
		seedSubscription(t, s, "https://example.com/push", userID)

		var wg sync.WaitGroup
		wg.Add(1)
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				var p pushPayload
				assert.NoError(t, json.Unmarshal(payload, &p))
				assert.Equal(t, "AC State Updated", p.Title)
				assert.Equal(t, "AC is on", p.Body)
				return response(http.StatusCreated), nil
			},
		}

		wp.Dispatch(Delivery{
			NotificationID: "n-1",
			UserID:         userID,
			Email:          "tenant@example.com",
			Status:         StatusInfo,
			Title:          "AC State Updated",
			Message:        "AC is on",
		})
		wg.Wait()

		select {
		case e := <-publisher.published:
			assert.Equal(t, "n-1", e.NotificationID)
			assert.Equal(t, "tenant@example.com", e.UserEmail)
		case <-time.After(time.Second):
			t.Fatal("event not published")
		}
		assert.Equal(t, []string{"tenant@example.com|AC State Updated"}, mailer.Sent())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		seedSubscription(t, s, "https://example.com/expired", storetest.Sys.Key("gone@example.com"))
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		wp.Dispatch(Delivery{NotificationID: "n-2", UserID: storetest.Sys.Key("gone@example.com"), Title: "t"})
		<-publisher.published

		_, err := s.FindSubscription(context.Background(), "https://example.com/expired")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("mail failure does not stop other channels", func(t *testing.T) {
		mailer.err = errors.New("smtp down")
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return nil, errors.New("push down")
			},
		}

		wp.Dispatch(Delivery{NotificationID: "n-3", UserID: userID, Email: "tenant@example.com", Title: "t"})
		select {
		case e := <-publisher.published:
			assert.Equal(t, "n-3", e.NotificationID)
		case <-time.After(time.Second):
			t.Fatal("event not published")
		}
	})
}
