package handlers

import (
	"github.com/padraicbc/juniortour/engine"
	mw "github.com/padraicbc/juniortour/middleware"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	svc    *engine.Service
	JWTKey []byte
	// cache drops stale cached reads after writes; nil until Register.
	cache *mw.CacheInvalidator
}

// New creates a Handler over the engine and the admin JWT signing key.
func New(svc *engine.Service, jwtKey []byte) *Handler {
	return &Handler{svc: svc, JWTKey: jwtKey}
}
