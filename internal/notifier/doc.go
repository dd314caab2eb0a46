// Package notifier sends chat notifications to the single configured
// destination.
//
// # Transport
//
// Delivery is delegated to a transport.Sender (the Telegram adapter in
// production), so the poll loop never depends on a messaging platform.
//
// # Throttling
//
// Sends pass through a token bucket and an optional dedup window that
// suppresses an identical text repeated within the window.
//
// Notify is synchronous: it returns once the message was delivered or
// failed. Failures are logged here and returned; callers decide whether
// they matter.
package notifier
