package handlers

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	mw "github.com/padraicbc/juniortour/middleware"
)

// RouteOptions configures the optional middleware of Register.
type RouteOptions struct {
	// Redis backs the response cache of read-heavy routes; nil disables it.
	Redis    *redis.Client
	CacheTTL time.Duration
	// PINLimiter throttles PIN lookups per client IP.
	PINLimiter *mw.IPRateLimiter
	Logger     *zap.Logger
}

// Register mounts every API route on e.
func Register(e *echo.Echo, h *Handler, opts RouteOptions) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PINLimiter == nil {
		opts.PINLimiter = mw.NewIPRateLimiter(10, 5)
	}
	cached := mw.ResponseCache(opts.Redis, opts.CacheTTL, opts.Logger)
	if opts.Redis != nil && opts.CacheTTL > 0 {
		h.cache = mw.NewCacheInvalidator(opts.Redis, opts.Logger)
	}

	e.GET("/healthz", h.Health)

	api := e.Group("/api", mw.Director())
	api.GET("/tournaments", h.Tournaments)
	api.GET("/player", h.Player)
	api.POST("/score/login", h.PINLogin, mw.RateLimit(opts.PINLimiter))
	api.GET("/leaderboard", h.Leaderboard, cached)

	fl := api.Group("/flights")
	fl.GET("", h.ListFlights, cached)
	fl.POST("/generate", h.GenerateFlights)
	fl.POST("/assign-start-times", h.AssignStartTimes)
	fl.GET("/startlist", h.Startlist)

	sc := api.Group("/scoring")
	sc.GET("/flight", h.PlayerFlight)
	sc.POST("/entry", h.SubmitHoleEntry)
	sc.GET("/hole-status", h.HoleStatus)
	sc.POST("/sign", h.SignRound)
	sc.GET("/scorecard", h.Scorecard)
	sc.GET("/round-scorecards", h.RoundScorecards)

	// Public
	e.POST("/api/admin/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	admin := e.Group("/api/admin", mw.JWT(h.JWTKey))
	admin.POST("/tournaments", h.CreateTournament)
	admin.PUT("/tournaments/:id/pars", h.SetPars)
	admin.POST("/registrations", h.AddRegistration)
}
