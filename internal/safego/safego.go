// Package safego launches the backend's fire-and-forget goroutines with panic
// recovery. The session reaper and the frontend revalidation pushes run outside
// any request; a panic in one of them must not take the server down or kill the
// job without a trace.
package safego

import "log/slog"

// Go runs fn on its own goroutine, recovering and logging any panic. Use it
// wherever work is detached from a request, such as jobs.SessionReaper or the
// revalidate client's async notifications.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
