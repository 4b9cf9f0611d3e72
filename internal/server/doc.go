// Package server provides the local HTTP listener that completes the operator login flow.
//
// # Callback Routing
//
// [CallbackRouter] mounts each [Handler] on the paths it reports, serves [HealthPath] and answers
// every other path with a 404 page. Its [Middleware] wraps the whole dispatch, so
// [LoggingMiddleware] sees stray requests as well as the callback.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback. It validates the state parameter,
// exchanges the code for tokens and sends the result through a channel. Only the first callback
// is processed.
//
// # Usage
//
// "mlcc auth login" binds a [CallbackServer] to the host of the configured redirect URI, opens the
// authorization URL in a browser, waits for the result and saves the token file before shutting down.
package server
