package helpers

import "expvar"

// Metrics is published under /api/debug/vars as "doctor_directory".
var Metrics = expvar.NewMap("doctor_directory")

func CountMetric(name string) { Metrics.Add(name, 1) }
