// Package transport is the HTTP layer under the resource clients.
//
// Every request carries the bearer token from a TokenSource when one is set.
// Any 401 or 403 response runs the registered UnauthorizedHandlers before the
// error reaches the caller, whichever resource was requested. Failures are
// go-errors values:
//
//   - no response: CategoryExternal with text code NETWORK_ERROR
//   - circuit open: CategoryExternal with text code CIRCUIT_OPEN
//   - non-2xx: category by status, Code set to the status, message taken from
//     the {"message"} or {"error"} field of the body
package transport
