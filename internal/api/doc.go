// Package api holds the wire contract shared by the journal server and
// client: the gRPC service descriptor, request and response messages and
// the JSON codec they travel with.
package api
