package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"airwise-backend/internal/events"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Delivery is one stored notification waiting to be fanned out.
type Delivery struct {
	NotificationID string
	TenantID       string
	UserID         string // user key, owner of the push subscriptions
	Email          string
	Status         string
	Title          string
	Message        string
	CreatedAt      time.Time
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WorkerPool fans notifications out to email, web push and the event
// broker. Every channel is optional and failures are only logged.
type WorkerPool struct {
	size    int
	jobs    chan Delivery
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	mailer  MailSender
	events  events.Publisher
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool. A nil mailer or webpush options
// disables that channel.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, mailer MailSender, publisher events.Publisher, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Delivery, size*32),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		mailer:  mailer,
		events:  publisher,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case d := <-wp.jobs:
			wp.deliver(ctx, d)
		case <-ctx.Done():
			wp.log.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues a delivery. It never blocks: when the queue is full the
// delivery is dropped.
func (wp *WorkerPool) Dispatch(d Delivery) {
	select {
	case wp.jobs <- d:
	default:
		wp.log.Warn("notification queue full, dropping delivery",
			zap.String("notification", d.NotificationID), zap.String("user", d.UserID))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Delivery {
	return wp.jobs
}

func (wp *WorkerPool) deliver(ctx context.Context, d Delivery) {
	if wp.mailer != nil && d.Email != "" {
		if err := wp.mailer.SendMail(ctx, d.Email, d.Title, d.Message); err != nil {
			wp.log.Warn("email delivery failed", zap.String("to", d.Email), zap.Error(err))
		}
	}

	if wp.webpush != nil {
		wp.sendPush(ctx, d)
	}

	err := wp.events.PublishNotification(ctx, events.NotificationCreated{
		NotificationID: d.NotificationID,
		TenantID:       d.TenantID,
		UserEmail:      d.Email,
		Status:         d.Status,
		Title:          d.Title,
		Message:        d.Message,
		CreatedAt:      d.CreatedAt,
	})
	if err != nil {
		wp.log.Warn("event publish failed", zap.String("notification", d.NotificationID), zap.Error(err))
	}
}

func (wp *WorkerPool) sendPush(ctx context.Context, d Delivery) {
	subscriptions, err := wp.store.ListSubscriptions(ctx, d.UserID)
	if err != nil {
		wp.log.Error("fetching push subscriptions failed", zap.String("user", d.UserID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Title: d.Title, Body: d.Message})
	if err != nil {
		wp.log.Error("encoding push payload failed", zap.Error(err))
		return
	}

	wp.log.Debug("sending push notifications", zap.Int("count", len(subscriptions)), zap.String("user", d.UserID))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("push delivery failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info("push subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error("deleting expired subscription failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
