// Package api hosts the read-only HTTP data service over the normalized
// dinosaur table. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/dinosaurs[...] for lookup, filtering and random picks.
//   - GET /v1/summary, timeline, groups, sizes, discoveries, locations and
//     describe for the dashboard analytics.
//   - GET /v1/export.csv and /v1/export.html for downloads with ETags.
package api
