// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package simulator

// SimulationRequest is the params object of the simulateTransaction RPC call
type SimulationRequest struct {
	// XDR encoded TransactionEnvelope
	Transaction string `json:"transaction"`
	// Extra instruction budget on top of the simulated usage (optional)
	ResourceConfig *ResourceConfig `json:"resourceConfig,omitempty"`
}

type ResourceConfig struct {
	InstructionLeeway uint64 `json:"instructionLeeway"`
}

// SimulationResponse is the result object returned by simulateTransaction
type SimulationResponse struct {
	Error string `json:"error,omitempty"`
	// XDR encoded SorobanTransactionData
	TransactionData string               `json:"transactionData,omitempty"`
	MinResourceFee  int64                `json:"minResourceFee,string,omitempty"`
	Results         []HostFunctionResult `json:"results,omitempty"`
	Cost            Cost                 `json:"cost"`
	Events          []string             `json:"events,omitempty"` // Diagnostic events
	RestorePreamble *RestorePreamble     `json:"restorePreamble,omitempty"`
	LatestLedger    uint32               `json:"latestLedger"`
}

type HostFunctionResult struct {
	// XDR encoded SorobanAuthorizationEntry list
	Auth []string `json:"auth"`
	// XDR encoded ScVal
	ReturnValue string `json:"xdr"`
}

type Cost struct {
	CPUInstructions uint64 `json:"cpuInsns,string"`
	MemoryBytes     uint64 `json:"memBytes,string"`
}

// RestorePreamble is set when the invocation touches archived ledger entries
type RestorePreamble struct {
	TransactionData string `json:"transactionData"`
	MinResourceFee  int64  `json:"minResourceFee,string"`
}
