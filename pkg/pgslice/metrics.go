package pgslice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DumpLatency is the duration of dump generation per table.
var DumpLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "pgslice_dump_latency",
		Help: "Duration of dump generation",
	},
	[]string{"table"},
)

// DumpRows counts the rows written to dumps per table.
var DumpRows = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pgslice_dump_rows_total",
		Help: "Rows written to dumps",
	},
	[]string{"table"},
)
