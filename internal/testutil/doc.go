// Package testutil contains small agents and helpers used across tests to
// reduce boilerplate when exercising the swarm: echo and failing agents, a
// recording agent that captures every action it receives, and an executor
// stub. They are not intended for production usage.
package testutil
