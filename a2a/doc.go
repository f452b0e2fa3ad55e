// Package a2a bridges the swarm and the Agent2Agent protocol.
//
// NewHandler exposes any core.Executor as an A2A JSON-RPC endpoint: an
// incoming message names an action and carries its payload, and the Output
// is returned in the final task status. RemoteAgent goes the other way and
// registers an agent that lives behind a remote A2A endpoint.
//
// Actions travel as a data part {"id": ..., "payload": ...}. A message made
// of text parts is accepted as well when its metadata names the action id
// under "action"; the joined text becomes the payload.
package a2a
