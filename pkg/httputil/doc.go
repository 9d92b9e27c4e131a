// Package httputil fetches remote documents for extgraph.
//
// Snapshots can be read straight from a running host, for example
// https://grafana.example/api/frontend/settings, whose "apps" field holds
// every plugin's extension metadata. [Client] wraps those requests with:
//
//   - [Retry]: exponential backoff for transient failures (network errors,
//     5xx and 429 responses)
//   - an optional byte cache ([cache.Cache]) so repeated runs do not hit
//     the host again until the TTL expires
//
// Usage:
//
//	c := httputil.NewClient(store, time.Hour)
//	c.Header.Set("Authorization", "Bearer "+token)
//	body, err := c.Get(ctx, "https://grafana.example/api/frontend/settings")
//
// Responses with 4xx status codes other than 429 fail immediately.
package httputil
