// Package health provides liveness, readiness and version endpoints.
//
// Liveness only reports that the process is up. Readiness runs every
// registered check concurrently, each bounded by the checker's timeout, and
// answers 503 when any of them fails. The diagram store registers itself as
// a check through the Pinger interface.
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterPinger("storage", store)
//	health.Register(mux, cfg.Telemetry.Health, checker, health.NewVersionInfo(version, commit, date))
package health
