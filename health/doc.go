// Package health tracks the health of a staging run's parts and serves
// it over HTTP.
//
// Each part (the ingestion run, the NATS connection) reports a Status to
// a Monitor. The aggregate is unhealthy if any part is unhealthy,
// degraded if any part is degraded, and healthy otherwise:
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("ingest", "staging subsets")
//	monitor.Update("nats", health.FromError("nats", err))
//
//	server.SetHealthHandler(health.Handler(monitor, "dristage"))
//
// Messages built from errors are sanitized: URLs, paths, addresses and
// credentials are replaced with placeholders before they are served.
package health
