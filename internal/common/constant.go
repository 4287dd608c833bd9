// Package common contains shared constants, sentinel errors and the error
// taxonomy used across blogkeeper components.
package common

// TokenCookieName is the cookie that carries the session token.
const TokenCookieName = "token"

// BearerPrefix prefixes the session token in the Authorization header for
// clients that do not keep cookies.
const BearerPrefix = "Bearer "
