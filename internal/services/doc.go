// Package services defines the [Catalog] interface for the remote music
// catalog and implements it for Spotify.
//
// # Catalog Interface
//
// The backup engine consumes the catalog exclusively through paginated
// read operations. Pages carry integer offsets rather than opaque tokens
// because offsets are what the resume cursor persists: an interrupted run
// restarts a listing at exactly the offset it stopped at.
//
// # Spotify Implementation
//
// [SpotifyCatalog] wraps the zmb3/spotify client with OAuth2
// authorization-code credentials. Token refresh happens transparently via
// the [oauth2] token source; [SpotifyCatalog.RefreshAuth] additionally
// forces a refresh when the engine sees an expired-token error, invoking
// the registered persistence callback with the new token.
//
// # Error Handling
//
// Every wire error is classified into the shared taxonomy before leaving
// this package:
//   - HTTP 429 (or free-text rate limit wording) → [shared.RateLimitError]
//     with the retry-after hint parsed from the response or message text
//   - HTTP 401 → [shared.ErrTokenExpired]
//   - anything else → wrapped [shared.ErrTransientFetch]
//
// The engine dispatches on these with errors.Is/errors.As and never sees a
// raw transport error.
package services
