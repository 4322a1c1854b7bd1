// Package common contains constants and sentinel errors shared by the
// server packages.
package common

// APIKeyHeaderName is the request header that carries the session token.
const APIKeyHeaderName = "x-api-key"

// ActivationTokenParam is the query parameter of the activation link.
const ActivationTokenParam = "token"

// MaxReactionsPerKind caps how many reactions of one kind a user may leave
// on a single product.
const MaxReactionsPerKind = 5
