// Package ch implements node contraction: the preprocessing phase that
// turns a road graph into a contraction hierarchy by repeatedly picking the
// least-important remaining node, inserting whatever shortcuts are needed
// to preserve shortest-path distances, and retiring it.
package ch

// PriorityParams weights the four terms of the node-importance heuristic,
// following the "Diploma thesis Contraction Hierarchies — Geisberger"
// coefficients referenced by contraction_params.rs.
type PriorityParams struct {
	EdgeDifference      int
	ContractedNeighbors int
	SearchSpace         int
	OriginalEdges       int
}

// DefaultPriorityParams returns the Geisberger-thesis coefficients.
func DefaultPriorityParams() PriorityParams {
	return PriorityParams{
		EdgeDifference:      190,
		ContractedNeighbors: 120,
		SearchSpace:         1,
		OriginalEdges:       70,
	}
}

// Strategy selects how the contraction order is determined.
type Strategy int

const (
	// StrategyLazyUpdate contracts the node with the currently-lowest
	// priority, recomputing priorities as neighbors contract.
	StrategyLazyUpdate Strategy = iota
	// StrategyFixedOrder contracts nodes in an explicitly given order,
	// ignoring the priority function entirely.
	StrategyFixedOrder
)

// UpdateFlags controls which priorities get recomputed as contraction
// proceeds, matching contraction_strategy.rs's LazyUpdateSelfAndNeighbors /
// LazyUpdateSelf / LazyUpdateNeighbors variants.
type UpdateFlags struct {
	// Self re-evaluates the popped node's own priority before contracting
	// it, and re-queues it if it's no longer the cheapest.
	Self bool
	// Neighbors re-evaluates the priority of every live neighbor of a
	// just-contracted node.
	Neighbors bool
	// Periodic re-evaluates every remaining node's priority after each
	// PeriodicK contractions. Off by default: self+neighbor updates keep
	// the queue fresh enough that a full sweep rarely pays for itself.
	Periodic bool
	// PeriodicK is the sweep interval when Periodic is set.
	PeriodicK int
}

// DefaultUpdateFlags enables both self and neighbor re-evaluation — the
// LazyUpdateSelfAndNeighbors strategy.
func DefaultUpdateFlags() UpdateFlags {
	return UpdateFlags{Self: true, Neighbors: true}
}

// Params bundles everything Contract needs.
type Params struct {
	Priority PriorityParams

	// WitnessLimit bounds each witness search run while deciding whether a
	// shortcut is necessary (the per-contraction budget).
	WitnessLimit int
	// WitnessInitialLimit bounds the witness search run while computing a
	// node's initial priority, before any contraction has happened.
	WitnessInitialLimit int

	Strategy Strategy
	Update   UpdateFlags

	// FixedOrder lists node indices in contraction order; only consulted
	// when Strategy == StrategyFixedOrder.
	FixedOrder []uint32
}

// DefaultParams returns the lazy-update strategy with the Geisberger
// coefficients and witness_search.rs's default settle caps (50 during
// contraction, 500 for the one-off initial-priority pass).
func DefaultParams() Params {
	return Params{
		Priority:            DefaultPriorityParams(),
		WitnessLimit:        50,
		WitnessInitialLimit: 500,
		Strategy:            StrategyLazyUpdate,
		Update:              DefaultUpdateFlags(),
	}
}
