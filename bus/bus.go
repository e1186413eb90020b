package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultPort       = 5672
	defaultFWQueue    = "fw:l"
	defaultOSQueue    = "os:l"
	contentType       = "application/hsn2+protobuf"
	pollInterval      = 20 * time.Millisecond
)

// Bus is the worker-side adapter over the AMQP broker: one connection,
// one channel per destination ("fw", "os"), and a single exclusive
// reply queue shared by every synchronous send this process makes.
type Bus struct {
	conn  *amqp.Connection
	chFW  *amqp.Channel
	chOS  *amqp.Channel
	appID string

	fwQueue string
	osQueue string
	replyQ  string

	keepRunning atomic.Bool
	logger      Logger

	mu sync.Mutex
	mw []Middleware
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithLogger installs a logger other than the no-op default.
func WithLogger(l Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// WithFWQueue overrides the default framework queue name.
func WithFWQueue(queue string) Option {
	return func(b *Bus) { b.fwQueue = queue }
}

// WithOSQueue overrides the default object store queue name.
func WithOSQueue(queue string) Option {
	return func(b *Bus) { b.osQueue = queue }
}

// New connects to the broker at host:port and declares the channels
// and reply queue this process will use. appID identifies the calling
// service and is attached to every outgoing message; it also disables
// correlation-id mismatch checking when set to "cli", matching the
// management console's historical exemption.
func New(host string, port int, appID string, opts ...Option) (*Bus, error) {
	if appID == "" {
		return nil, ErrNoAppID
	}
	if port == 0 {
		port = defaultPort
	}

	b := &Bus{
		appID:   appID,
		fwQueue: defaultFWQueue,
		osQueue: defaultOSQueue,
		logger:  NoopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.keepRunning.Store(true)

	url := fmt.Sprintf("amqp://%s:%d/", host, port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, NewError("can't connect to rabbitmq", err)
	}
	b.conn = conn

	if err := b.openChannels(); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bus) openChannels() error {
	b.logger.Info("connecting", "fw_queue", b.fwQueue, "os_queue", b.osQueue)

	chFW, err := b.conn.Channel()
	if err != nil {
		return NewError("can't open fw channel", err)
	}
	chOS, err := b.conn.Channel()
	if err != nil {
		return NewError("can't open os channel", err)
	}
	if err := chFW.Qos(1, 0, false); err != nil {
		return NewError("can't set fw qos", err)
	}
	if err := chOS.Qos(1, 0, false); err != nil {
		return NewError("can't set os qos", err)
	}

	q, err := chOS.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return NewError("can't declare reply queue", err)
	}

	b.chFW = chFW
	b.chOS = chOS
	b.replyQ = q.Name
	return nil
}

// SetFWQueue sets the queue name (with priority notation, e.g. "fw:h")
// used when talking to the Framework.
func (b *Bus) SetFWQueue(queue string) { b.fwQueue = queue }

// AddMiddleware registers a Middleware around SendSync, applied in
// registration order on Before and reverse order on After.
func (b *Bus) AddMiddleware(m Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mw = append(b.mw, m)
}

func (b *Bus) channelFor(dest Destination) (*amqp.Channel, string, error) {
	switch dest {
	case DestFramework:
		return b.chFW, b.fwQueue, nil
	case DestObjectStore:
		return b.chOS, b.osQueue, nil
	default:
		return nil, "", fmt.Errorf("bus: unknown destination %q", dest)
	}
}

// Publish sends env to dest without waiting for a reply (fire and
// forget), matching sendCommand(sync=0).
func (b *Bus) Publish(dest Destination, env Envelope) error {
	ch, routingKey, err := b.channelFor(dest)
	if err != nil {
		return err
	}
	return ch.Publish("", routingKey, false, false, amqp.Publishing{
		Type:        env.Type,
		ContentType: contentType,
		AppId:       b.appID,
		Body:        env.Body,
	})
}

// SendSync sends env to dest and blocks until a reply arrives on the
// shared reply queue, ctx is done, Stop is called (ErrShutdown), or
// timeout elapses — whichever is first. It matches sendCommand(sync=1):
// a fresh correlation id is minted per call and the reply queue is
// polled; the first reply taken off it is returned, and if its
// correlation id differs from the one sent the call fails with
// MismatchedCorrelationError, unless this bus's app id is "cli".
func (b *Bus) SendSync(ctx context.Context, dest Destination, env Envelope, timeout time.Duration) (Envelope, error) {
	b.mu.Lock()
	mws := append([]Middleware(nil), b.mw...)
	b.mu.Unlock()

	for _, m := range mws {
		if err := m.Before(ctx, dest, env); err != nil {
			return Envelope{}, err
		}
	}

	reply, err := b.sendSync(ctx, dest, env, timeout)

	for i := len(mws) - 1; i >= 0; i-- {
		mws[i].After(ctx, dest, env, reply, err)
	}
	if err != nil {
		return Envelope{}, err
	}
	return *reply, nil
}

func (b *Bus) sendSync(ctx context.Context, dest Destination, env Envelope, timeout time.Duration) (*Envelope, error) {
	ch, routingKey, err := b.channelFor(dest)
	if err != nil {
		return nil, err
	}

	corrID, err := newCorrelationID(env.Type)
	if err != nil {
		return nil, NewError("can't generate correlation id", err)
	}

	if err := ch.Publish("", routingKey, false, false, amqp.Publishing{
		Type:          env.Type,
		ContentType:   contentType,
		AppId:         b.appID,
		ReplyTo:       b.replyQ,
		CorrelationId: corrID,
		Body:          env.Body,
	}); err != nil {
		return nil, NewError("publish failed", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		if !b.keepRunning.Load() {
			return nil, ErrShutdown
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		delivery, ok, err := ch.Get(b.replyQ, false)
		if err != nil {
			return nil, NewError("get failed", err)
		}
		if ok {
			if ackErr := delivery.Ack(false); ackErr != nil {
				b.logger.Warn("ack_failed", "error", ackErr)
			}
			if corrID != delivery.CorrelationId && b.appID != "cli" {
				return nil, &MismatchedCorrelationError{Sent: corrID, Received: delivery.CorrelationId}
			}
			return &Envelope{Type: delivery.Type, Body: delivery.Body}, nil
		}

		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
		time.Sleep(pollInterval)
	}
}

// ConfigureListener starts a consumer on queue, invoking handler for
// every delivery and acking or rejecting based on its return value, as
// RabbitMqConsumer.consume did.
func (b *Bus) ConfigureListener(ctx context.Context, queue string, handler Handler) error {
	deliveries, err := b.chFW.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return NewError("can't consume queue "+queue, err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, open := <-deliveries:
				if !open {
					return
				}
				env := Envelope{Type: d.Type, Body: d.Body}
				settle(d, handler(ctx, env))
			}
		}
	}()
	return nil
}

// BlockingConsume runs a single receive loop against the service
// queue, handing each delivery to handler and blocking until ctx is
// canceled or keepRunning is cleared. This mirrors
// taskReceive/_wait_for_response's blocking poll, rather than the
// callback-registration variant.
func (b *Bus) BlockingConsume(ctx context.Context, queue string, handler Handler) error {
	deliveries, err := b.chFW.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return NewError("can't consume queue "+queue, err)
	}
	for b.keepRunning.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, open := <-deliveries:
			if !open {
				return nil
			}
			env := Envelope{Type: d.Type, Body: d.Body}
			settle(d, handler(ctx, env))
		}
	}
	return nil
}

// AttachToMonitoring binds to a fanout-style monitoring exchange and
// consumes every message it publishes, matching attachToMonitoring.
func (b *Bus) AttachToMonitoring(ctx context.Context, exchange string, handler Handler) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return NewError("can't open monitoring channel", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return NewError("can't set monitoring qos", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return NewError("can't declare monitoring queue", err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return NewError("can't bind monitoring queue", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return NewError("can't consume monitoring queue", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, open := <-deliveries:
				if !open {
					return
				}
				env := Envelope{Type: d.Type, Body: d.Body}
				settle(d, handler(ctx, env))
			}
		}
	}()
	return nil
}

// settle acks or rejects d according to disp, translating RejectRequeue
// into basic_reject(requeue=true) the way taskReceive's Termination
// handling does.
func settle(d amqp.Delivery, disp Disposition) {
	switch disp {
	case Ack:
		_ = d.Ack(false)
	case RejectRequeue:
		_ = d.Reject(true)
	default:
		_ = d.Reject(false)
	}
}

// Stop flips the keepRunning flag so any in-flight or future SendSync
// calls return ErrShutdown instead of blocking, matching
// osAdapter.keepRunning being cleared from the task processor's
// signal handler.
func (b *Bus) Stop() { b.keepRunning.Store(false) }

// IsRunning reports the current keepRunning flag, so other adapters
// (objectstore.WithKeepRunning) can share the same shutdown signal.
func (b *Bus) IsRunning() bool { return b.keepRunning.Load() }

// Close clears the keepRunning flag, as Stop does, then tears down the
// connection. Calling it again is a no-op.
func (b *Bus) Close() error {
	b.keepRunning.Store(false)
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	b.chFW = nil
	b.chOS = nil
	return err
}
