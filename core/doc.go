// Package core provides the foundational domain types and interfaces used by
// agentswarm. It defines:
//
//   - Action and Output, the self-describing request/response envelopes
//   - Agent, the single-method capability every handler implements
//   - Executor, the registry as seen from inside an agent (re-entrant dispatch)
//   - The error taxonomy shared by the registry, dispatch tables and agents
//
// The package intentionally keeps implementation concerns (routing, concrete
// agents, transports) out of scope so that any agent can be swapped without
// touching the orchestration layer.
package core
