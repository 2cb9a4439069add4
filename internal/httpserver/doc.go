// Package httpserver runs the gateway's inbound HTTP listener with
// signal-driven graceful shutdown.
package httpserver
