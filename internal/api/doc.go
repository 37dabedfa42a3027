// Package api implements the HTTP and WebSocket surface of the accessory server.
//
// This package provides:
//   - REST endpoints for the accessory database and characteristic reads/writes
//   - A WebSocket hub that delivers characteristic events to subscribed clients
//   - Middleware stack (request ID, logging, recovery, body size limit)
//
// # Connections
//
// Every WebSocket client gets a connection id when it connects. Subscriptions
// and writes made over the socket are tagged with that id, so a client never
// receives an event for a value it wrote itself. REST writes may carry the
// same id in the X-Connection-ID header.
//
// # Status codes
//
// Per characteristic results use HAP status codes (0 for success, negative
// values for failures). A request where every characteristic succeeded
// answers 200 (reads) or 204 (writes); otherwise 207 Multi-Status with the
// individual results.
package api
