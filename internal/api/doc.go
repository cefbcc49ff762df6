// Package api defines the transport types shared by the HTTP server and
// its clients, plus converters from internal domain types.
package api
