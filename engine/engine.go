// Package engine runs the tournament operations: flight scheduling, tee
// times, score entry, the leaderboard and round sign-off.
package engine

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/padraicbc/juniortour/cache"
	"github.com/padraicbc/juniortour/metrics"
	"github.com/padraicbc/juniortour/models"
	"github.com/padraicbc/juniortour/notify"
	"github.com/padraicbc/juniortour/render"
	"github.com/padraicbc/juniortour/signoff"
	"github.com/padraicbc/juniortour/store"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	// DirectorPIN gates director operations. Empty disables them.
	DirectorPIN string
	Location    *time.Location
	Policy      signoff.Policy
	Recipients  []string
	MailFrom    string
	// LookupTTL bounds how long tournaments and pars are cached.
	LookupTTL time.Duration

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	Clock   cache.Clock
}

// Service implements the tournament operations.
type Service struct {
	repo     store.Repository
	renderer render.Renderer
	notifier notify.Notifier
	opts     Options

	logger  *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	clock   cache.Clock

	tournaments *cache.TTL[uuid.UUID, *models.Tournament]
	pars        *cache.TTL[uuid.UUID, map[int]int]
}

// New wires a Service.
func New(repo store.Repository, renderer render.Renderer, notifier notify.Notifier, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/padraicbc/juniortour/engine")
	}
	if opts.Clock == nil {
		opts.Clock = cache.SystemClock{}
	}
	if renderer == nil {
		renderer = render.Disabled{}
	}
	if notifier == nil {
		notifier = notify.Disabled{}
	}
	return &Service{
		repo:        repo,
		renderer:    renderer,
		notifier:    notifier,
		opts:        opts,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
		clock:       opts.Clock,
		tournaments: cache.New[uuid.UUID, *models.Tournament](opts.LookupTTL, opts.Clock),
		pars:        cache.New[uuid.UUID, map[int]int](opts.LookupTTL, opts.Clock),
	}
}

// Location is the civil timezone of tee times.
func (s *Service) Location() *time.Location { return s.opts.Location }

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return nil
}

// withTelemetry wraps an operation with a span, metrics, logging and
// panic recovery.
func withTelemetry[T any](
	s *Service,
	ctx context.Context,
	op string,
	fields []zap.Field,
	fn func(ctx context.Context) (T, error),
) (result T, err error) {
	attrs := []attribute.KeyValue{attribute.String("operation", op)}
	for _, f := range fields {
		switch f.Type {
		case zapcore.StringType:
			attrs = append(attrs, attribute.String(f.Key, f.String))
		case zapcore.Int64Type:
			attrs = append(attrs, attribute.Int64(f.Key, f.Integer))
		}
	}
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attrs...))
	defer span.End()

	s.metrics.Attempt(op)
	start := s.clock.Now()
	defer func() {
		s.metrics.Duration(op, s.clock.Now().Sub(start))
	}()

	log := s.logger.With(append(fields, zap.String("operation", op))...)
	log.Debug(op + " triggered")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", op, r)
			log.Error("panic recovered", zap.Error(err))
			s.metrics.Failure(op, "panic")
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			var zero T
			result = zero
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		class := Class(err)
		s.metrics.Failure(op, class)
		span.RecordError(err)
		span.SetStatus(codes.Error, class)
		switch class {
		case "upstream", "inconsistent", "internal":
			log.Error(op+" failed", zap.String("class", class), zap.Error(err))
		default:
			log.Info(op+" rejected", zap.String("class", class), zap.Error(err))
		}
		return result, err
	}
	log.Info(op + " completed")
	return result, nil
}

// authorizeDirector compares the shared director secret. With no secret
// configured every director operation is refused.
func (s *Service) authorizeDirector(pin string) error {
	if s.opts.DirectorPIN == "" {
		return fmt.Errorf("%w: director operations are disabled", ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.opts.DirectorPIN)) != 1 {
		return fmt.Errorf("%w: invalid director pin", ErrUnauthorized)
	}
	return nil
}

func (s *Service) tournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	if id == uuid.Nil {
		return nil, invalid("tournament id required")
	}
	if t, ok := s.tournaments.Get(id); ok {
		return t, nil
	}
	t, err := s.repo.Tournament(ctx, id)
	if err != nil {
		return nil, storeErr("tournament", err)
	}
	s.tournaments.Set(id, t)
	return t, nil
}

func (s *Service) tournamentPars(ctx context.Context, id uuid.UUID) (map[int]int, error) {
	if p, ok := s.pars.Get(id); ok {
		return p, nil
	}
	p, err := s.repo.Pars(ctx, id)
	if err != nil {
		return nil, storeErr("pars", err)
	}
	s.pars.Set(id, p)
	return p, nil
}

func (s *Service) registration(ctx context.Context, tournamentID, id uuid.UUID) (*models.Registration, error) {
	if id == uuid.Nil {
		return nil, invalid("registration id required")
	}
	r, err := s.repo.Registration(ctx, tournamentID, id)
	if err != nil {
		return nil, storeErr("registration", err)
	}
	return r, nil
}

func checkRound(round int) error {
	if !models.ValidRound(round) {
		return invalid("round must be 1, 2 or 3, got %d", round)
	}
	return nil
}

func roundFields(tournamentID uuid.UUID, round int) []zap.Field {
	return []zap.Field{
		zap.String("tournament_id", tournamentID.String()),
		zap.Int("round", round),
	}
}
