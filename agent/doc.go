// Package agent contains the building blocks for agents that run inside a
// swarm. The package focuses on three concerns:
//
//  1. Dispatch tables (Table) mapping operation names to typed handlers,
//     built once per agent type and shared by all its instances
//  2. Composition patterns (Func, Sequence, Parallel) that orchestrate other
//     agents through the core.Executor they are invoked with
//  3. Data-defined agents backed by external services (ModelAgent for LLM
//     operations, SearchAgent for SearxNG)
//
// Handlers return plain Go errors; the table converts them into Error
// outputs carrying the error text verbatim, so callers see the same message
// the handler produced.
package agent
