// Package services implements the [ChannelAPI] client for the managed live channel service.
//
// # Channel Service
//
// [ChannelService] talks to the REST gateway in front of the channel provider:
// channel list and detail, output discovery, status changes, input switch/prepare,
// graphic overlays and configured outputs/graphics. Responses are decoded through the
// boundary parsers in models, so malformed bodies surface as [shared.ErrMalformedResponse].
//
// Requests are paced with a [rate.Limiter] when api.requests_per_second is set, since the
// gateway answers 429 once the provider throttles.
//
// # Authentication
//
// Every request carries a bearer token from an [oauth2.TokenSource]. [NewTokenSource] loads the
// token written by "mlcc auth login" and refreshes it through the identity provider,
// persisting refreshed tokens back to the [TokenFile].
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError], which matches shared sentinels:
//   - [shared.ErrAPIRequest] : any non-2xx response
//   - [shared.ErrNotAuthenticated] : 401 and 403
//   - [shared.ErrChannelNotFound] : 404
//   - [shared.ErrThrottled] : 429
//   - [shared.ErrServiceUnavailable] : 502 and 503
//
// # Raw Requests
//
// [APIService] performs unchecked requests and returns the raw body for the "api" commands.
package services
