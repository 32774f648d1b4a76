// Package httputil fetches remote images for the seamcarve CLI.
//
// # Overview
//
//   - [Fetcher]: HTTP GET with a size limit and automatic retries
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// The CLI accepts an http or https URL wherever it accepts an image path:
//
//	f := httputil.NewFetcher()
//	data, err := f.Fetch(ctx, "https://example.com/castle.jpg")
//
// Connection failures and 5xx responses are retried; 404 is reported as
// FILE_NOT_FOUND and other statuses fail immediately.
//
// # Retry Logic
//
// [Retry] only retries errors wrapped in [RetryableError] (see [Retryable]);
// anything else is returned on the first attempt. The Redis and MongoDB
// cache backends share it for their transient failures.
package httputil
