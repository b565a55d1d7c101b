package main

import (
	"fmt"
	"math/big"

	"flowScope/internal/config"
	"flowScope/internal/projector"
)

// flowChange is the parsed form of config.FlowConfig.
type flowChange struct {
	// candidate is the signed contribution of the proposed stream, nil when
	// the existing stream is removed without replacement.
	candidate *big.Int
	topUp     *big.Int
	unit      projector.TimeUnit
}

func parseFlowChange(cfg config.FlowConfig, decimals uint8) (flowChange, error) {
	unit, err := projector.ParseTimeUnit(cfg.Unit)
	if err != nil {
		return flowChange{}, err
	}
	change := flowChange{unit: unit}

	var outgoing *big.Int
	switch {
	case cfg.FlowRate != "":
		outgoing, err = projector.ParseBigInt(cfg.FlowRate)
		if err != nil {
			return flowChange{}, fmt.Errorf("parse flow rate: %w", err)
		}
	case cfg.Amount != "":
		amount, err := projector.ParseTokenAmount(cfg.Amount, decimals)
		if err != nil {
			return flowChange{}, fmt.Errorf("parse amount: %w", err)
		}
		outgoing = projector.FlowRateFromAmountPerUnit(amount, unit)
	}
	if outgoing != nil {
		if outgoing.Sign() < 0 {
			return flowChange{}, fmt.Errorf("flow rate must not be negative")
		}
		change.candidate = outgoing.Neg(outgoing)
	}

	if cfg.TopUp != "" {
		topUp, err := projector.ParseTokenAmount(cfg.TopUp, decimals)
		if err != nil {
			return flowChange{}, fmt.Errorf("parse top-up: %w", err)
		}
		if topUp.Sign() < 0 {
			return flowChange{}, fmt.Errorf("top-up must not be negative")
		}
		change.topUp = topUp
	}
	return change, nil
}
