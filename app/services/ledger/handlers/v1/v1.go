// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/hashchain/app/services/ledger/handlers/v1/chaingrp"
	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ardanlabs/hashchain/foundation/blockchain/worker"
	"github.com/ardanlabs/hashchain/foundation/events"
	"github.com/ardanlabs/hashchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log        *zap.SugaredLogger
	DB         *database.Database
	Worker     *worker.Worker
	Difficulty uint
	Events     *events.Hub
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	cgh := chaingrp.Handlers{
		Log:        cfg.Log,
		DB:         cfg.DB,
		Worker:     cfg.Worker,
		Difficulty: cfg.Difficulty,
		WS:         websocket.Upgrader{},
		Evts:       cfg.Events,
	}

	const version = "v1"

	app.Handle(http.MethodGet, version, "/events", cgh.Events)
	app.Handle(http.MethodGet, version, "/chain", cgh.Chain)
	app.Handle(http.MethodGet, version, "/chain/validate", cgh.Validate)
	app.Handle(http.MethodGet, version, "/chain/signatures", cgh.Signatures)
	app.Handle(http.MethodPost, version, "/blocks", cgh.SubmitBlock)
	app.Handle(http.MethodGet, version, "/jobs/:id", cgh.Job)
}
