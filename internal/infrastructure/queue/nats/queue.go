package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/outlet-assistant/internal/infrastructure/resilience"
)

const workerQueueGroup = "outlet-indexers"

// Queue carries outlet change notifications between the ingest command and
// index workers. Workers share a queue group so each event is indexed once.
type Queue struct {
	conn           *nats.Conn
	subject        string
	executor       *resilience.Executor
	lagObserver    func(time.Duration)
	handlerTimeout time.Duration
}

type Options struct {
	ClientName           string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	// LagObserver receives the delay between publish and delivery of each event.
	LagObserver func(time.Duration)
	// HandlerTimeout bounds one handler call; zero leaves it unbounded.
	HandlerTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ClientName == "" {
		o.ClientName = "outlet-assistant"
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects <= 0 {
		o.MaxReconnects = 60
	}
	if o.RetryOnFailedConnect == nil {
		retry := true
		o.RetryOnFailedConnect = &retry
	}
	return o
}

func (o Options) natsOptions() []nats.Option {
	return []nats.Option{
		nats.Name(o.ClientName),
		nats.Timeout(o.ConnectTimeout),
		nats.ReconnectWait(o.ReconnectWait),
		nats.MaxReconnects(o.MaxReconnects),
		nats.RetryOnFailedConnect(*o.RetryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	}
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	options = options.withDefaults()
	conn, err := nats.Connect(url, options.natsOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:           conn,
		subject:        subject,
		executor:       options.ResilienceExecutor,
		lagObserver:    options.LagObserver,
		handlerTimeout: options.HandlerTimeout,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishOutletChanged(ctx context.Context, outletID int64) error {
	data, err := encodeOutletChanged(outletChangedEvent{OutletID: outletID, ChangedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, data); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	err = q.executor.Execute(ctx, publishOperation, call, classifyNATSError)
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeOutletChanged blocks until ctx is done, then drains the subscription.
func (q *Queue) SubscribeOutletChanged(ctx context.Context, handler func(context.Context, int64) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		event, err := decodeOutletChanged(msg.Data)
		if err != nil {
			slog.Warn("outlet_event_malformed", "payload", string(msg.Data), "error", err)
			return
		}
		if q.lagObserver != nil && !event.ChangedAt.IsZero() {
			q.lagObserver(time.Since(event.ChangedAt))
		}

		handlerCtx, cancel := q.handlerContext(ctx)
		defer cancel()
		if err := handler(handlerCtx, event.OutletID); err != nil {
			slog.Error("outlet_event_handler_failed", "outlet_id", event.OutletID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) handlerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.handlerTimeout > 0 {
		return context.WithTimeout(ctx, q.handlerTimeout)
	}
	return context.WithCancel(ctx)
}
