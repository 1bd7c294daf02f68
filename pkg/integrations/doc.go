// Package integrations provides HTTP clients for the remote data APIs used to
// enrich a river network.
//
// # Overview
//
// Each API has its own subpackage:
//
//   - [openmeteo]: terrain elevation for node coordinates
//
// # Shared Infrastructure
//
// The [Client] type provides what every API client needs: JSON GET requests
// with default headers, retries with exponential backoff for transient
// failures (network errors, 429 and 5xx responses), and response caching in
// any [cache.Cache] backend under a per-API key prefix.
//
//	client := integrations.NewClient(backend, "openmeteo:", 30*24*time.Hour, nil)
//	var out Response
//	hit, err := client.Cached(ctx, key, false, &out, func() error {
//	    return client.Get(ctx, url, &out)
//	})
//
// # Errors
//
// [ErrNotFound] and [ErrNetwork] are sentinel errors; test with errors.Is.
// Transient failures are additionally wrapped in [cache.RetryableError].
package integrations
