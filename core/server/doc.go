// Package server holds the HTTP server configuration.
//
// While the start command handles the server lifecycle, this package defines the
// configuration structure for the listen port, the API key protecting every route
// and the per-request timeout applied to store calls.
package server
