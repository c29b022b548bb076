// Package handler implements the floorlink HTTP API.
//
// Every request is turned into one or more session operations, which run on
// the session's event loop; handlers never touch registry state themselves.
//
// # API Design
//
// REST conventions apply:
// - GET for retrieval
// - POST for creation and actions
// - PUT for updates
// - DELETE for removal
//
// Errors are returned as JSON with {error, details} and a status code
// derived from the error's sentinel.
//
// # Live channels
//
// /events streams session events over SSE through the hub. /ws/pointer is a
// websocket carrying pointer down/move/up messages that drive the drag
// machine; replies report hits and commits.
//
// Middleware provides request logging, panic recovery and CORS.
package handler
