// Package redis connects to a Redis server with retry logic and exposes a
// health probe. The billing webhook layer uses Redis as an optional
// low-latency dedupe store for processed event IDs.
package redis
