package handler

import (
	"github.com/ticketmail/ticketmail/internal/config"
	"github.com/ticketmail/ticketmail/internal/database"
	"github.com/ticketmail/ticketmail/internal/logger"
	"github.com/ticketmail/ticketmail/internal/service"
)

// Handler holds all HTTP handlers
type Handler struct {
	db            *database.Postgres
	rdb           *database.Redis
	log           *logger.Logger
	cfg           *config.Config
	emailSvc      *service.EmailService
	subscriberSvc *service.SubscriberService
	broadcastSvc  *service.BroadcastService
}

// New creates a new Handler instance
func New(db *database.Postgres, rdb *database.Redis, log *logger.Logger, cfg *config.Config, emailSvc *service.EmailService, subscriberSvc *service.SubscriberService, broadcastSvc *service.BroadcastService) *Handler {
	return &Handler{
		db:            db,
		rdb:           rdb,
		log:           log,
		cfg:           cfg,
		emailSvc:      emailSvc,
		subscriberSvc: subscriberSvc,
		broadcastSvc:  broadcastSvc,
	}
}
