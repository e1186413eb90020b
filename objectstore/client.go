// Package objectstore implements the Object Store adapter: typed
// GET/PUT/PUT_RAW/UPDATE/QUERY requests over the bus, with
// retry-on-timeout and the empty-input short-circuits the rest of the
// runtime depends on.
package objectstore

import (
	"context"
	"errors"
	"time"

	"github.com/hsn2-platform/worker-core/bus"
	"github.com/hsn2-platform/worker-core/metrics"
	"github.com/hsn2-platform/worker-core/objectmodel"
)

const requestType = "ObjectRequest"
const responseType = "ObjectResponse"

// Logger is the narrow logging contract this package depends on.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Client is the Object Store adapter. A task processor owns one per
// worker process.
type Client struct {
	bus        *bus.Bus
	logger     Logger
	maxTries   int
	timeout    time.Duration
	keepRunning func() bool

	lastMissing []uint64
}

// Option configures a Client.
type Option func(*Client)

// WithLogger installs a logger other than the default no-op one.
func WithLogger(l Logger) Option { return func(c *Client) { c.logger = l } }

// WithMaxTries sets how many times sendRequest sends a request that
// keeps timing out before giving up, the first send included. Matches
// HSN2ObjectStoreAdapter.maxTries.
func WithMaxTries(n int) Option { return func(c *Client) { c.maxTries = n } }

// WithTimeout sets the per-attempt reply timeout. Matches
// HSN2ObjectStoreAdapter.timeout (600s default).
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithKeepRunning installs a predicate checked between retries; once
// it returns false, sendRequest stops retrying and returns
// ErrTermination, matching the bus adapter's keepRunning flag flipped
// from a signal handler.
func WithKeepRunning(fn func() bool) Option { return func(c *Client) { c.keepRunning = fn } }

// New builds a Client over b.
func New(b *bus.Bus, opts ...Option) (*Client, error) {
	if b == nil {
		return nil, ErrNoBus
	}
	c := &Client{
		bus:         b,
		logger:      noopLogger{},
		maxTries:    1,
		timeout:     600 * time.Second,
		keepRunning: func() bool { return true },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LastMissing returns the object ids the most recent Get could not
// find, mirroring HSN2ObjectStoreAdapter.missing.
func (c *Client) LastMissing() []uint64 { return c.lastMissing }

func (c *Client) sendRequest(ctx context.Context, req *request) (*response, error) {
	body, err := encodeRequest(req)
	if err != nil {
		return nil, newError("can't encode request", err)
	}
	env := bus.Envelope{Type: requestType, Body: body}

	var resp *response
	tries := 1
	for c.keepRunning() {
		reply, err := c.bus.SendSync(ctx, bus.DestObjectStore, env, c.timeout)
		if err != nil {
			if errors.Is(err, bus.ErrShutdown) || !c.keepRunning() {
				return nil, ErrTermination
			}
			if errors.Is(err, bus.ErrTimeout) {
				if tries >= c.maxTries {
					return nil, newError("object store not responding after retries", err)
				}
				tries++
				metrics.RecordObjectStoreRetry()
				c.logger.Info("object_request_retry", "try", tries)
				continue
			}
			return nil, newError("send failed", err)
		}
		if reply.Type != responseType {
			return nil, newError("unexpected reply", &bus.BadMessageError{Expected: responseType, Got: reply.Type})
		}
		decoded, err := decodeResponse(reply.Body)
		if err != nil {
			return nil, newError("can't decode response", err)
		}
		failureValue, _ := objectmodel.NameToNumber("ResponseType", "FAILURE")
		if decoded.respType == failureValue {
			c.logger.Error("object_request_failed")
			return nil, newError("object store reported failure", nil)
		}
		resp = decoded
		break
	}
	if resp == nil {
		return nil, ErrTermination
	}
	return resp, nil
}

// Get retrieves objects by id. An empty id list is a no-op that
// returns nil without contacting the bus.
func (c *Client) Get(ctx context.Context, jobID uint64, objectIDs []uint64) ([]*objectmodel.Object, error) {
	if len(objectIDs) == 0 {
		return nil, nil
	}
	reqType, err := objectmodel.NameToNumber("RequestType", "GET")
	if err != nil {
		return nil, err
	}
	resp, err := c.sendRequest(ctx, &request{job: jobID, reqType: reqType, objectIDs: objectIDs})
	if err != nil {
		return nil, err
	}
	c.lastMissing = resp.missing
	return resp.data, nil
}

// Update pushes modified objects back to the store. An empty object
// list is a no-op.
func (c *Client) Update(ctx context.Context, jobID uint64, objects []*objectmodel.Object, overwrite bool) error {
	if len(objects) == 0 {
		return nil
	}
	reqType, err := objectmodel.NameToNumber("RequestType", "UPDATE")
	if err != nil {
		return err
	}
	_, err = c.sendRequest(ctx, &request{job: jobID, reqType: reqType, overwrite: overwrite, data: objects})
	return err
}

// Put adds new objects produced by taskID and returns the ids they
// were assigned. An empty object list is a no-op.
func (c *Client) Put(ctx context.Context, jobID, taskID uint64, objects []*objectmodel.Object) ([]uint64, error) {
	return c.put(ctx, jobID, taskID, objects, false)
}

// PutRaw is Put without task attribution, used by imports.
func (c *Client) PutRaw(ctx context.Context, jobID uint64, objects []*objectmodel.Object) ([]uint64, error) {
	return c.put(ctx, jobID, 0, objects, true)
}

func (c *Client) put(ctx context.Context, jobID, taskID uint64, objects []*objectmodel.Object, raw bool) ([]uint64, error) {
	if len(objects) == 0 {
		return nil, nil
	}
	name := "PUT"
	if raw {
		name = "PUT_RAW"
	}
	reqType, err := objectmodel.NameToNumber("RequestType", name)
	if err != nil {
		return nil, err
	}
	resp, err := c.sendRequest(ctx, &request{job: jobID, taskID: taskID, reqType: reqType, data: objects})
	if err != nil {
		return nil, err
	}
	return resp.objectIDs, nil
}

// Query returns the ids of objects matching every QueryStructure
// (logically ANDed, each structure negated independently).
func (c *Client) Query(ctx context.Context, jobID uint64, structures []QueryStructure) ([]uint64, error) {
	reqType, err := objectmodel.NameToNumber("RequestType", "QUERY")
	if err != nil {
		return nil, err
	}
	var entries []queryEntry
	for _, s := range structures {
		es, err := s.expand()
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	resp, err := c.sendRequest(ctx, &request{job: jobID, reqType: reqType, queries: entries})
	if err != nil {
		return nil, err
	}
	return resp.objectIDs, nil
}
