package report

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sanspareilsmyn/deliverylens/internal/metrics"
)

// Summary describes the spread of bucket averages in a report.
type Summary struct {
	Buckets int
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64
}

// Summarize computes the summary of a report. StdDev is the sample standard
// deviation and is zero for fewer than two buckets.
func Summarize(results []metrics.MetricResult) Summary {
	if len(results) == 0 {
		return Summary{}
	}

	averages := make([]float64, len(results))
	for i, r := range results {
		averages[i] = r.Average
	}

	s := Summary{
		Buckets: len(averages),
		Min:     floats.Min(averages),
		Max:     floats.Max(averages),
	}
	if len(averages) < 2 {
		s.Mean = averages[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(averages, nil)
	return s
}

// MarshalLogObject lets a Summary be logged with zap.Object.
func (s Summary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("buckets", s.Buckets)
	enc.AddFloat64("min", s.Min)
	enc.AddFloat64("max", s.Max)
	enc.AddFloat64("mean", s.Mean)
	enc.AddFloat64("stddev", s.StdDev)
	return nil
}

var _ zapcore.ObjectMarshaler = Summary{}

// Field is a convenience zap field for the summary.
func (s Summary) Field() zap.Field {
	return zap.Object("summary", s)
}
