// Package sse decodes the server-sent-event framing used by streaming
// chat-completion endpoints into the ordered event sequence consumed by a
// session. Malformed records are tolerated per-record; only transport errors
// fail a stream.
package sse
