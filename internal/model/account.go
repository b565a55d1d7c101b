package model

import "time"

// AccountTokenSnapshot is the indexer's per-account, per-token aggregate.
// Integer fields are base-10 strings as returned by the subgraph.
type AccountTokenSnapshot struct {
	TotalNetFlowRate         string `json:"total_net_flow_rate"`
	BalanceUntilUpdatedAt    string `json:"balance_until_updated_at"`
	UpdatedAtTimestamp       int64  `json:"updated_at_timestamp"`
	MaybeCriticalAtTimestamp *int64 `json:"maybe_critical_at_timestamp,omitempty"`
}

// PoolMembership is an account's units in a distribution pool.
type PoolMembership struct {
	Units       string         `json:"units"`
	IsConnected bool           `json:"is_connected"`
	Pool        MembershipPool `json:"pool"`
}

// MembershipPool carries the pool aggregates needed for pro-rata inflow.
type MembershipPool struct {
	ID                 string `json:"id,omitempty"`
	FlowRate           string `json:"flow_rate"`
	AdjustmentFlowRate string `json:"adjustment_flow_rate"`
	TotalUnits         string `json:"total_units"`
}

// RealtimeBalance is the on-chain realtimeBalanceOfNow result.
type RealtimeBalance struct {
	Available   string `json:"available"`
	Deposit     string `json:"deposit"`
	OwedDeposit string `json:"owed_deposit"`
	Timestamp   int64  `json:"timestamp"`
}

// AccountState is one observation of an account's balance and flows for a token.
type AccountState struct {
	Token       string                `json:"token"`
	Account     string                `json:"account"`
	Receiver    string                `json:"receiver,omitempty"`
	Snapshot    *AccountTokenSnapshot `json:"snapshot,omitempty"`
	Memberships []PoolMembership      `json:"memberships,omitempty"`
	Realtime    *RealtimeBalance      `json:"realtime,omitempty"`
	// ReceiverFlowRate is the current outgoing rate to Receiver, in tokens per second.
	ReceiverFlowRate string    `json:"receiver_flow_rate,omitempty"`
	FetchedAt        time.Time `json:"fetched_at"`
}
