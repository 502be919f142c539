// Package middleware provides observability for the ngutils HTTP API.
//
// Metrics registers Prometheus collectors and doubles as the recorder for
// page model operations:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("ngutils"))
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	svc := ngutils.New(ngutils.WithRecorder(m))
//
// OpenTelemetry opens a server span per request using the global tracer
// provider unless one is given:
//
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("ngutils")))
//
// Both label by chi route pattern rather than raw path.
package middleware
