// Package httputil provides the standard JSON response envelope used by
// every HTTP handler in the service.
package httputil
