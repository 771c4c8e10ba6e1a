package sql

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Client holds session user information.
type Client struct {
	// User of the session.
	User string
	// Address of the client.
	Address string
}

// Session holds the session data.
type Session interface {
	// ID returns the unique ID of the connection.
	ID() uint32
	// Address of the server.
	Address() string
	// Client returns the user of the session.
	Client() Client
	// GetLogger returns the logger for this session.
	GetLogger() *logrus.Entry
}

// BaseSession is the basic session type.
type BaseSession struct {
	id     uint32
	addr   string
	client Client
	logger *logrus.Entry
}

var sessionIDs uint32

// NewSession creates a new session with the given client.
func NewSession(server string, client Client) *BaseSession {
	id := atomic.AddUint32(&sessionIDs, 1)
	return &BaseSession{
		id:     id,
		addr:   server,
		client: client,
		logger: logrus.WithField("connectionID", id),
	}
}

// NewBaseSession creates a new empty session.
func NewBaseSession() *BaseSession {
	return NewSession("", Client{})
}

// ID implements the Session interface.
func (s *BaseSession) ID() uint32 { return s.id }

// Address implements the Session interface.
func (s *BaseSession) Address() string { return s.addr }

// Client implements the Session interface.
func (s *BaseSession) Client() Client { return s.client }

// GetLogger implements the Session interface.
func (s *BaseSession) GetLogger() *logrus.Entry {
	if s.logger == nil {
		s.logger = logrus.WithField("connectionID", s.id)
	}
	return s.logger
}

// Context of the query execution.
type Context struct {
	context.Context
	Session
	query     string
	queryTime time.Time
	props     *QueryProps
	tracer    opentracing.Tracer
	rootSpan  opentracing.Span
	reentrant string
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithSession adds the given session to the context.
func WithSession(s Session) ContextOption {
	return func(ctx *Context) {
		ctx.Session = s
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithQuery adds the given query to the context.
func WithQuery(q string) ContextOption {
	return func(ctx *Context) {
		ctx.query = q
	}
}

// WithQueryTime sets the time the query started at. Dynamic functions
// such as NOW are computed from it.
func WithQueryTime(t time.Time) ContextOption {
	return func(ctx *Context) {
		ctx.queryTime = t
	}
}

// WithRootSpan sets the root span of the context.
func WithRootSpan(s opentracing.Span) ContextOption {
	return func(ctx *Context) {
		ctx.rootSpan = s
	}
}

// NewContext creates a new query context. Options can be passed to configure
// the context. If some aspect of the context is not configure, the default
// value will be used.
// By default, the context will have an empty base session and a noop tracer.
func NewContext(
	ctx context.Context,
	opts ...ContextOption,
) *Context {
	c := &Context{
		Context:   ctx,
		Session:   NewBaseSession(),
		queryTime: time.Now(),
		props:     new(QueryProps),
		tracer:    opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context with default values.
func NewEmptyContext() *Context { return NewContext(context.TODO()) }

// Query returns the query string associated with this context.
func (c *Context) Query() string { return c.query }

// QueryTime returns the time the query started at.
func (c *Context) QueryTime() time.Time { return c.queryTime }

// QueryProps returns the properties of the query being compiled.
func (c *Context) QueryProps() *QueryProps { return c.props }

// DisableCaching signals that the plan being compiled must not be cached.
func (c *Context) DisableCaching() {
	c.props.Set(QPropNoCache)
}

// CachingDisabled returns whether DisableCaching was called on this context
// or any context derived from it.
func (c *Context) CachingDisabled() bool {
	return c.props.IsSet(QPropNoCache)
}

// Span creates a new tracing span with the given context.
// It will return the span and a new context that should be passed to all
// children of this span.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, c.WithContext(ctx)
}

// NewSubContext creates a new sub-context with the current context as
// parent. Returns the resulting context.CancelFunc as well as the new
// *sql.Context, which be used to cancel the new context before the parent
// is finished.
func (c *Context) NewSubContext() (*Context, context.CancelFunc) {
	ctx, cancelFunc := context.WithCancel(c.Context)

	return c.WithContext(ctx), cancelFunc
}

// NewReentrantContext creates a cancellable sub-context used to execute
// expressions in the middle of the compilation of a query. The new context
// is marked as reentrant with a unique id, and shares the query properties
// of its parent. The returned cancel func must always be called.
func (c *Context) NewReentrantContext() (*Context, context.CancelFunc, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := c.NewSubContext()
	ctx.reentrant = id.String()
	return ctx, cancel, nil
}

// IsReentrant returns whether the context was created for a reentrant
// execution.
func (c *Context) IsReentrant() bool { return c.reentrant != "" }

// ReentrantID returns the id of the reentrant execution or an empty string.
func (c *Context) ReentrantID() string { return c.reentrant }

// WithContext returns a new context with the given underlying context.
func (c *Context) WithContext(ctx context.Context) *Context {
	nc := *c
	nc.Context = ctx
	return &nc
}

// RootSpan returns the root span, if any.
func (c *Context) RootSpan() opentracing.Span {
	return c.rootSpan
}

// NewSpanIter creates a RowIter executed in the given span.
func NewSpanIter(span opentracing.Span, iter RowIter) RowIter {
	// In the default, non traced case, we should not bother with
	// collecting the timings below.
	if (span.Tracer() == opentracing.NoopTracer{}) {
		return &spanIter{span: span, iter: iter, noop: true}
	}
	return &spanIter{span: span, iter: iter}
}

type spanIter struct {
	span  opentracing.Span
	iter  RowIter
	noop  bool
	count int
	max   time.Duration
	min   time.Duration
	total time.Duration
	done  bool
}

func (i *spanIter) updateTimings(start time.Time) {
	elapsed := time.Since(start)
	if i.max < elapsed {
		i.max = elapsed
	}

	if i.min > elapsed || i.min == 0 {
		i.min = elapsed
	}

	i.total += elapsed
}

func (i *spanIter) Next() (Row, error) {
	start := time.Now()

	row, err := i.iter.Next()
	if err == io.EOF {
		i.finish()
		return nil, err
	}

	if err != nil {
		i.finishWithError(err)
		return nil, err
	}

	i.count++
	if !i.noop {
		i.updateTimings(start)
	}
	return row, nil
}

func (i *spanIter) finish() {
	if i.done {
		return
	}
	i.done = true

	if i.noop {
		i.span.Finish()
		return
	}

	var avg time.Duration
	if i.count > 0 {
		avg = i.total / time.Duration(i.count)
	}

	i.span.FinishWithOptions(opentracing.FinishOptions{
		LogRecords: []opentracing.LogRecord{
			{
				Timestamp: time.Now(),
				Fields: []log.Field{
					log.Int("rows", i.count),
					log.String("total_time", i.total.String()),
					log.String("max_time", i.max.String()),
					log.String("min_time", i.min.String()),
					log.String("avg_time", avg.String()),
				},
			},
		},
	})
}

func (i *spanIter) finishWithError(err error) {
	if i.done {
		return
	}
	i.done = true

	i.span.FinishWithOptions(opentracing.FinishOptions{
		LogRecords: []opentracing.LogRecord{
			{
				Timestamp: time.Now(),
				Fields:    []log.Field{log.String("error", err.Error())},
			},
		},
	})
}

func (i *spanIter) Close() error {
	i.finish()
	return i.iter.Close()
}
