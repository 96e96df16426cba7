// Package token manages the Schedules Direct session token.
//
// A Manager moves between Unauthenticated, Authenticating and Valid as the
// token is acquired and rejected. A rate-limit answer from the identity
// endpoint moves it to RateLimited, where it stays: later attempts fail
// immediately without a network call.
package token
