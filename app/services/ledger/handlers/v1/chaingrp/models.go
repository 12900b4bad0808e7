package chaingrp

import "github.com/ardanlabs/hashchain/foundation/blockchain/database"

type newBlock struct {
	Data       string `json:"data"`
	Difficulty *uint  `json:"difficulty" validate:"omitempty,lte=64"`
}

type submitted struct {
	JobID      string `json:"job_id"`
	Difficulty uint   `json:"difficulty"`
	Status     string `json:"status"`
}

type jobResult struct {
	JobID  string              `json:"job_id"`
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Block  *database.BlockData `json:"block,omitempty"`
}

type validation struct {
	Valid  bool    `json:"valid"`
	Blocks int     `json:"blocks"`
	Index  *uint64 `json:"index,omitempty"`
	Reason string  `json:"reason,omitempty"`
}
