package structure

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

const tracerName = "github.com/roach88/nestedset/internal/structure"

// Repository is everything the Service needs from storage.
// *store.Store implements it.
type Repository interface {
	engine.NodeStore

	FindRoot(ctx context.Context, structureID int64) (ir.Node, bool, error)
	CreateRoot(ctx context.Context, structureID int64) (ir.Node, error)
	DeepestDescendantLevel(ctx context.Context, structureID, elementID int64) (int, bool, error)
	DeleteSubtree(ctx context.Context, n ir.Node) (int64, error)

	ListNodes(ctx context.Context, structureID int64) ([]ir.Node, error)
	Children(ctx context.Context, n ir.Node) ([]ir.Node, error)
	Descendants(ctx context.Context, n ir.Node) ([]ir.Node, error)
	Ancestors(ctx context.Context, n ir.Node) ([]ir.Node, error)
	Parent(ctx context.Context, n ir.Node) (ir.Node, bool, error)

	SaveStructure(ctx context.Context, s *ir.Structure) error
	GetStructure(ctx context.Context, id int64) (ir.Structure, bool, error)
	ListStructures(ctx context.Context) ([]ir.Structure, error)
	DeleteStructure(ctx context.Context, id int64) (bool, error)
}

// Service places elements into structures.
//
// A Service is safe for concurrent use. Its root cache and hook registry are
// owned by the instance; two services never share them.
type Service struct {
	repo    Repository
	engine  *engine.Engine
	clock   *engine.Clock
	roots   *RootCache
	hooks   *Hooks
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records placement counts and durations in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global otel provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock sets the clock that stamps move events.
func WithClock(clock *engine.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithoutRootCache makes every root-level verb look the root up in storage.
func WithoutRootCache() Option {
	return func(s *Service) {
		s.roots = nil
	}
}

// New creates a Service over repo.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		clock:  engine.NewClock(),
		roots:  NewRootCache(),
		hooks:  &Hooks{},
		tracer: otel.Tracer(tracerName),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = engine.New(repo, s.logger)
	return s
}

// OnBeforeMove registers a handler that may veto placements.
func (s *Service) OnBeforeMove(h BeforeMoveHandler) {
	s.hooks.OnBeforeMove(h)
}

// OnAfterMove registers a handler notified after a placement commits.
func (s *Service) OnAfterMove(h AfterMoveHandler) {
	s.hooks.OnAfterMove(h)
}

// RunInTx runs fn in a transaction that every placement made with the
// context fn receives will join.
func (s *Service) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.repo.RunInTx(ctx, fn)
}
