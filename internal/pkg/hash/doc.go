// Package hash provides one-way digests for secrets.
//
// Passwords go through Bcrypt or Argon2id. Short-lived codes go through
// HMACSHA256 so the stored digest is useless without the server secret.
// Every Verify compares in constant time.
package hash
