package imdf

import (
	"sync/atomic"
	"time"
)

// Relation names reported to RecordSkippedReference.
const (
	RelationAmenityUnit = "amenity.unit"
	RelationAnchorUnit  = "anchor.unit"
)

// MetricsCollector defines an interface for collecting decode metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see package metrics/prometheus).
type MetricsCollector interface {
	// RecordFileDecode is called after each feature file was loaded and decoded.
	// file is the kind name ("unit"), features the number of decoded features,
	// err is nil if successful.
	RecordFileDecode(file string, features int, duration time.Duration, err error)

	// RecordDecode is called after each archive decode, including linking.
	RecordDecode(duration time.Duration, err error)

	// RecordSkippedReference is called for every reference to a feature that
	// is not part of the archive and was skipped while linking.
	RecordSkippedReference(relation string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFileDecode(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordDecode(time.Duration, error)                  {}
func (NoopMetricsCollector) RecordSkippedReference(string)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DecodeCount         atomic.Int64
	DecodeErrors        atomic.Int64
	DecodeTotalNanos    atomic.Int64
	FileDecodeCount     atomic.Int64
	FileDecodeErrors    atomic.Int64
	FileDecodeNanos     atomic.Int64
	FeaturesDecoded     atomic.Int64
	SkippedAmenityUnits atomic.Int64
	SkippedAnchorUnits  atomic.Int64
}

// RecordFileDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFileDecode(_ string, features int, duration time.Duration, err error) {
	b.FileDecodeCount.Add(1)
	b.FileDecodeNanos.Add(duration.Nanoseconds())
	b.FeaturesDecoded.Add(int64(features))
	if err != nil {
		b.FileDecodeErrors.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(duration time.Duration, err error) {
	b.DecodeCount.Add(1)
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordSkippedReference implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSkippedReference(relation string) {
	switch relation {
	case RelationAmenityUnit:
		b.SkippedAmenityUnits.Add(1)
	case RelationAnchorUnit:
		b.SkippedAnchorUnits.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DecodeCount:         b.DecodeCount.Load(),
		DecodeErrors:        b.DecodeErrors.Load(),
		DecodeAvgNanos:      avg(b.DecodeTotalNanos.Load(), b.DecodeCount.Load()),
		FileDecodeCount:     b.FileDecodeCount.Load(),
		FileDecodeErrors:    b.FileDecodeErrors.Load(),
		FileDecodeAvgNanos:  avg(b.FileDecodeNanos.Load(), b.FileDecodeCount.Load()),
		FeaturesDecoded:     b.FeaturesDecoded.Load(),
		SkippedAmenityUnits: b.SkippedAmenityUnits.Load(),
		SkippedAnchorUnits:  b.SkippedAnchorUnits.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DecodeCount         int64
	DecodeErrors        int64
	DecodeAvgNanos      int64
	FileDecodeCount     int64
	FileDecodeErrors    int64
	FileDecodeAvgNanos  int64
	FeaturesDecoded     int64
	SkippedAmenityUnits int64
	SkippedAnchorUnits  int64
}
