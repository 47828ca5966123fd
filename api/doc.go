// Package api holds the record types and one client per REST resource of the
// hostel admin API. Every client method is exactly one request; errors from
// the transport are returned unchanged. Write payloads are validated before
// anything is sent.
package api
