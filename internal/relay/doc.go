// Package relay owns stream ingestion concerns.
//
// Ownership boundary:
// - TCP accept loop and per-connection incremental decode
// - value acknowledgement back to the sender
// - decode statistics, Prometheus metrics, and the HTTP admin API
//
// The relay summarizes decoded values but never interprets them; the
// codec itself lives in package bencode and the transport adapters in
// package stream.
package relay
