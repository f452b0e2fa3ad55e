// Package model defines the provider-agnostic abstractions for interacting
// with chat models from agents.
//
// Core goals:
//   - Unify streaming and non-streaming generation behind a single interface
//   - Express structured output as a JSON schema response format
//   - Keep request and response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement Model in their own subpackages so
// agents remain decoupled from vendor SDKs.
package model
