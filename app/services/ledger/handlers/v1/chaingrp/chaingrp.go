// Package chaingrp maintains the group of handlers for ledger access.
package chaingrp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/hashchain/business/web/errs"
	"github.com/ardanlabs/hashchain/foundation/blockchain/database"
	"github.com/ardanlabs/hashchain/foundation/blockchain/worker"
	"github.com/ardanlabs/hashchain/foundation/events"
	"github.com/ardanlabs/hashchain/foundation/validate"
	"github.com/ardanlabs/hashchain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log        *zap.SugaredLogger
	DB         *database.Database
	Worker     *worker.Worker
	Difficulty uint
	WS         websocket.Upgrader
	Evts       *events.Hub
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Chain returns the full chain as it is stored.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.blocks()
	if err != nil {
		return err
	}

	records := make([]database.BlockData, len(blocks))
	for i, block := range blocks {
		records[i] = database.NewBlockData(block)
	}

	return web.Respond(ctx, w, records, http.StatusOK)
}

// Validate checks the integrity of the chain. When a difficulty is provided
// in the query string the work of every block is checked as well.
func (h Handlers) Validate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.blocks()
	if err != nil {
		return err
	}

	err = database.Validate(blocks)

	if d := r.URL.Query().Get("difficulty"); d != "" && err == nil {
		difficulty, perr := strconv.ParseUint(d, 10, 8)
		if perr != nil {
			return errs.NewTrusted(fmt.Errorf("invalid difficulty %q", d), http.StatusBadRequest)
		}
		err = database.ValidateWork(blocks, uint(difficulty))
	}

	resp := validation{
		Valid:  err == nil,
		Blocks: len(blocks),
	}

	if ve := database.GetValidationError(err); ve != nil {
		resp.Reason = ve.Reason.String()
		if ve.Reason != database.EmptyChain {
			idx := ve.Index
			resp.Index = &idx
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Signatures classifies the seal of every block in the chain.
func (h Handlers) Signatures(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.blocks()
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, database.ValidateSignatures(blocks), http.StatusOK)
}

// SubmitBlock queues a request to append a block to the chain.
func (h Handlers) SubmitBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	difficulty := h.Difficulty
	if nb.Difficulty != nil {
		difficulty = *nb.Difficulty
	}

	h.Log.Infow("submit block", "traceid", v.TraceID, "difficulty", difficulty, "size", len(nb.Data))

	job, err := h.Worker.Submit(nb.Data, difficulty)
	if err != nil {
		return errs.Classify(err, submitRules...)
	}

	resp := submitted{
		JobID:      job.ID,
		Difficulty: difficulty,
		Status:     "queued",
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Job returns the outcome of a submitted block.
func (h Handlers) Job(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := web.Param(r, "id")

	result, exists := h.Worker.Result(id)
	if !exists {
		resp := jobResult{
			JobID:  id,
			Status: "pending",
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	resp := jobResult{
		JobID:  id,
		Status: "appended",
	}

	switch {
	case result.Err != nil:
		resp.Status = "failed"
		resp.Error = result.Err.Error()
	default:
		bd := database.NewBlockData(result.Block)
		resp.Block = &bd
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// Status mappings for the ledger errors the handlers expect.
var (
	readRules = []errs.Rule{
		{Target: database.ErrCorruptChain, Status: http.StatusUnprocessableEntity},
	}

	submitRules = []errs.Rule{
		{Target: worker.ErrQueueFull, Status: http.StatusServiceUnavailable},
		{Target: worker.ErrShutdown, Status: http.StatusServiceUnavailable},
	}
)

// blocks reads the chain, reporting a corrupt chain to the client.
func (h Handlers) blocks() ([]database.Block, error) {
	blocks, err := h.DB.Blocks()
	if err != nil {
		return nil, errs.Classify(err, readRules...)
	}

	return blocks, nil
}
