package pipeline

import (
	"math"
	"sort"
	"strconv"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/formant-extract/internal/extract"
)

// MetricsCalculator summarises a run for reporting
type MetricsCalculator struct {
	logger logging.Logger
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator(logger logging.Logger) *MetricsCalculator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &MetricsCalculator{
		logger: logger,
	}
}

// DistributionStats represents statistical measures of a sample
type DistributionStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P95    float64 `json:"p95" yaml:"p95"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Count  int     `json:"count" yaml:"count"`
}

// QualityMetrics describes how much of a transcript was measured and how
type QualityMetrics struct {
	AnalysisRate      float64            `json:"analysis_rate" yaml:"analysis_rate"`
	SkipReasons       map[string]int     `json:"skip_reasons" yaml:"skip_reasons"`
	OrderDistribution map[string]int     `json:"order_distribution" yaml:"order_distribution"`
	FallbackRate      float64            `json:"fallback_rate" yaml:"fallback_rate"`
	RemeasuredRate    float64            `json:"remeasured_rate" yaml:"remeasured_rate"`
	Duration          *DistributionStats `json:"duration" yaml:"duration"`
	Distance          *DistributionStats `json:"distance" yaml:"distance"`
}

// CalculateQualityMetrics summarises the result of a run
func (mc *MetricsCalculator) CalculateQualityMetrics(result *Result) *QualityMetrics {
	metrics := &QualityMetrics{
		SkipReasons:       result.Stats.SkipReasons(),
		OrderDistribution: make(map[string]int),
	}

	var durations, distances []float64
	withOrder := 0
	for _, vm := range result.Measurements {
		durations = append(durations, vm.Dur)
		if d, ok := vm.Distance.Get(); ok {
			distances = append(distances, d)
		}
		if vm.NFormants > 0 {
			withOrder++
			metrics.OrderDistribution[strconv.Itoa(vm.NFormants)]++
		}
	}

	if result.Stats.Vowels > 0 {
		metrics.AnalysisRate = float64(result.Stats.Analyzed) / float64(result.Stats.Vowels)
	}
	if withOrder > 0 {
		metrics.FallbackRate = float64(withOrder-len(distances)) / float64(withOrder)
	}
	if n := len(result.Measurements); n > 0 {
		metrics.RemeasuredRate = float64(result.Stats.Remeasured) / float64(n)
	}

	metrics.Duration = mc.calculateStats(durations)
	metrics.Distance = mc.calculateStats(distances)

	mc.logger.Debug("Calculated quality metrics", logging.Fields{
		"analysis_rate": metrics.AnalysisRate,
		"fallback_rate": metrics.FallbackRate,
		"orders":        len(metrics.OrderDistribution),
	})
	return metrics
}

// calculateStats calculates statistical measures for a dataset
func (mc *MetricsCalculator) calculateStats(data []float64) *DistributionStats {
	if len(data) == 0 {
		return &DistributionStats{Count: 0}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	stats := &DistributionStats{
		Count:  len(data),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Mean:   stat.Mean(data, nil),
	}
	if len(data) > 1 {
		stats.StdDev = stat.StdDev(data, nil)
	}

	return mc.sanitizeStats(stats)
}

// sanitizeStats removes infinite and NaN values so the stats can be encoded
func (mc *MetricsCalculator) sanitizeStats(stats *DistributionStats) *DistributionStats {
	for _, v := range []*float64{&stats.Mean, &stats.Median, &stats.P95, &stats.Min, &stats.Max, &stats.StdDev} {
		if math.IsInf(*v, 0) || math.IsNaN(*v) {
			*v = 0
		}
	}
	return stats
}

// ClassOrderCounts tallies the winning formant order per vowel class.
func ClassOrderCounts(ms []*extract.VowelMeasurement) map[string]map[int]int {
	counts := make(map[string]map[int]int)
	for _, vm := range ms {
		if vm.NFormants == 0 {
			continue
		}
		byOrder, ok := counts[vm.Code.Class]
		if !ok {
			byOrder = make(map[int]int)
			counts[vm.Code.Class] = byOrder
		}
		byOrder[vm.NFormants]++
	}
	return counts
}
