// Package otp issues and checks short-lived numeric one-time codes.
//
// A Manager keeps at most one active code per subject. Codes are stored only
// as keyed digests, expire after a fixed TTL and can be consumed once. Stores
// for memory, Redis and Postgres share the Store contract; the conditional
// Consume is what makes a code single-use across instances.
package otp
