package model

import "time"

// ProjectionRecord is a persisted flow change projection.
type ProjectionRecord struct {
	Account                string    `json:"account"`
	Token                  string    `json:"token"`
	Receiver               string    `json:"receiver,omitempty"`
	ObservedAt             time.Time `json:"observed_at"`
	SnapshotTimestamp      int64     `json:"snapshot_timestamp"`
	CurrentStartingBalance string    `json:"current_starting_balance"`
	NewStartingBalance     string    `json:"new_starting_balance"`
	CurrentTotalFlowRate   string    `json:"current_total_flow_rate"`
	NewTotalFlowRate       string    `json:"new_total_flow_rate"`
	CurrentLiquidation     *int64    `json:"current_liquidation,omitempty"`
	NewLiquidation         *int64    `json:"new_liquidation,omitempty"`
	Held                   bool      `json:"held"`
}
