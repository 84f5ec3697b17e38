// Package model defines the provider-agnostic abstractions and concrete
// helpers for streaming panel replies from language models.
//
// Core goals:
//   - Put every backend behind a single streaming interface (Model)
//   - Keep request shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Backends (the raw openaichat wire client and the OpenAI / Anthropic SDK
// adapters) implement the Model interface from this package so the panel
// orchestration remains decoupled from vendor SDKs and wire formats.
package model
