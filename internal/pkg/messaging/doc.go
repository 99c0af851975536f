// Package messaging publishes and consumes events without tying callers to a
// broker.
//
// NSQ, NATS, Kafka and Google Pub/Sub are supported, plus an in-process
// Memory broker for local runs and tests. Headers travel natively where the
// broker has them; NSQ carries them in a JSON envelope and Pub/Sub as
// attributes.
package messaging
