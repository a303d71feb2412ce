// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"fmt"
	"io"

	"github.com/dotandev/tokenctl/internal/simulator"
)

// ResourceReport summarizes what a simulated invocation will consume.
type ResourceReport struct {
	Method          string
	CPUInstructions uint64
	MemoryBytes     uint64
	// Instruction budget requested in the transaction data
	Instructions   uint32
	ReadOnlyKeys   int
	ReadWriteKeys  int
	MinResourceFee int64
	AuthEntries    int
	Events         int
}

func NewResourceReport(method string, sim *simulator.SimulationResponse) (*ResourceReport, error) {
	data, err := simulator.TransactionData(sim)
	if err != nil {
		return nil, err
	}
	report := &ResourceReport{
		Method:          method,
		CPUInstructions: sim.Cost.CPUInstructions,
		MemoryBytes:     sim.Cost.MemoryBytes,
		Instructions:    uint32(data.Resources.Instructions),
		ReadOnlyKeys:    len(data.Resources.Footprint.ReadOnly),
		ReadWriteKeys:   len(data.Resources.Footprint.ReadWrite),
		MinResourceFee:  sim.MinResourceFee,
		Events:          len(sim.Events),
	}
	if len(sim.Results) > 0 {
		report.AuthEntries = len(sim.Results[0].Auth)
	}
	return report, nil
}

func PrintResourceReport(w io.Writer, report *ResourceReport) {
	fmt.Fprintf(w, "📦 Resource Report: %s\n", report.Method)
	fmt.Fprintln(w, "--------------------------------")
	fmt.Fprintf(w, "CPU:     %d instructions (budget %d)\n", report.CPUInstructions, report.Instructions)
	fmt.Fprintf(w, "Memory:  %d bytes\n", report.MemoryBytes)
	fmt.Fprintf(w, "Fee:     %d stroops (min resource fee)\n\n", report.MinResourceFee)

	fmt.Fprintln(w, "Footprint:")
	fmt.Fprintf(w, "  read-only:  %d entries\n", report.ReadOnlyKeys)
	fmt.Fprintf(w, "  read-write: %d entries\n", report.ReadWriteKeys)
	if report.AuthEntries > 0 {
		fmt.Fprintf(w, "Auth entries: %d\n", report.AuthEntries)
	}
	if report.Events > 0 {
		fmt.Fprintf(w, "Diagnostic events: %d\n", report.Events)
	}
}
