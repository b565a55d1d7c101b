package main

import (
	"encoding/json"
	"io"
	"math/big"
	"time"

	"flowScope/internal/model"
	"flowScope/internal/projector"
)

type report struct {
	Token       tokenView     `json:"token"`
	Account     string        `json:"account,omitempty"`
	Receiver    string        `json:"receiver,omitempty"`
	Now         int64         `json:"now"`
	SnapshotTS  int64         `json:"snapshot_timestamp"`
	SameRate    bool          `json:"same_rate"`
	Current     scenarioView  `json:"current"`
	New         scenarioView  `json:"new"`
	AnnualRange []segmentView `json:"annual_range"`
}

type tokenView struct {
	Address    string `json:"address,omitempty"`
	Symbol     string `json:"symbol,omitempty"`
	Decimals   uint8  `json:"decimals"`
	Underlying string `json:"underlying,omitempty"`
}

type scenarioView struct {
	StartingBalance string  `json:"starting_balance"`
	FlowRate        string  `json:"flow_rate"`
	FlowRatePerUnit string  `json:"flow_rate_per_unit"`
	Liquidation     *int64  `json:"liquidation,omitempty"`
	LiquidationTime *string `json:"liquidation_time,omitempty"`
}

type segmentView struct {
	Scenario     string `json:"scenario"`
	StartTS      int64  `json:"start_timestamp"`
	StartBalance string `json:"start_balance"`
	EndTS        int64  `json:"end_timestamp"`
	EndBalance   string `json:"end_balance"`
}

func buildReport(meta model.TokenMeta, s projector.BalanceSnapshot, p projector.FlowChangeProjection, unit projector.TimeUnit, now int64) report {
	r := report{
		Token:      tokenView{Address: meta.Address, Symbol: meta.Symbol, Decimals: meta.Decimals, Underlying: meta.Underlying},
		Now:        now,
		SnapshotTS: s.SnapshotTimestamp,
		SameRate:   p.SameRate(),
		Current:    scenario(p.CurrentStartingBalance, p.CurrentTotalFlowRate, p.CurrentLiquidation, meta.Decimals, unit),
		New:        scenario(p.NewStartingBalance, p.NewTotalFlowRate, p.NewLiquidation, meta.Decimals, unit),
	}

	annual := p.AnnualRange(now)
	r.AnnualRange = append(r.AnnualRange, segment("current", annual.Current, meta.Decimals))
	if !r.SameRate || p.NewStartingBalance.Cmp(p.CurrentStartingBalance) != 0 {
		r.AnnualRange = append(r.AnnualRange, segment("new", annual.New, meta.Decimals))
	}
	return r
}

func scenario(balance, rate *big.Int, liquidation *int64, decimals uint8, unit projector.TimeUnit) scenarioView {
	v := scenarioView{
		StartingBalance: projector.FormatTokenAmount(balance, decimals),
		FlowRate:        rate.String(),
		FlowRatePerUnit: projector.FormatFlowRate(rate, decimals, unit),
		Liquidation:     liquidation,
	}
	if liquidation != nil {
		formatted := time.Unix(*liquidation, 0).UTC().Format(time.RFC3339)
		v.LiquidationTime = &formatted
	}
	return v
}

func segment(name string, seg projector.Segment, decimals uint8) segmentView {
	return segmentView{
		Scenario:     name,
		StartTS:      seg.Start.Timestamp,
		StartBalance: projector.FormatTokenAmount(seg.Start.Balance, decimals),
		EndTS:        seg.End.Timestamp,
		EndBalance:   projector.FormatTokenAmount(seg.End.Balance, decimals),
	}
}

func writeReport(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
