// Package jwt issues and verifies the access tokens handed out after an
// account confirms its email.
//
// Tokens are HS512 with registered claims plus the account username and
// email. Middleware stores verified claims in the request context with
// SetAuth and handlers read them back with GetAuth.
package jwt
