package index

import (
	"time"

	"github.com/hupe1980/semsearch/model"
)

// MetricsObserver observes index reads.
type MetricsObserver interface {
	// OnBlockRead is called after a posting block (KindWord) or a relation
	// block (KindOntology) was read.
	OnBlockRead(kind model.Kind, entries int, duration time.Duration, err error)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnBlockRead(model.Kind, int, time.Duration, error) {}
