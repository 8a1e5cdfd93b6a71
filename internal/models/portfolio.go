package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Portfolio result status tags.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// PortfolioResult is the optimized allocation returned by PUT /model.
// When Status is StatusError only Error is authoritative.
type PortfolioResult struct {
	Status      string                `json:"status"`
	Tickers     []string              `json:"tickers,omitempty"`
	Value       float64               `json:"value,omitempty"`
	Error       string                `json:"error,omitempty"`
	Return      float64               `json:"return"`
	Volatility  float64               `json:"volatility"`
	Sharpe      float64               `json:"sharpe"`
	Weights     map[string]float64    `json:"weights"`
	Shares      map[string]float64    `json:"shares"`
	Performance map[time.Time]float64 `json:"performance"`
}

// PerformancePoint is one sample of the normalized performance series.
type PerformancePoint struct {
	Time  time.Time
	Value float64
}

// IsError reports whether the result carries an error status.
func (p *PortfolioResult) IsError() bool {
	return p.Status == StatusError
}

// SortedTickers returns the weighted tickers in lexical order.
func (p *PortfolioResult) SortedTickers() []string {
	tickers := make([]string, 0, len(p.Weights))
	for t := range p.Weights {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// PerformanceSeries returns the performance samples ordered by time.
func (p *PortfolioResult) PerformanceSeries() []PerformancePoint {
	points := make([]PerformancePoint, 0, len(p.Performance))
	for ts, v := range p.Performance {
		points = append(points, PerformancePoint{Time: ts, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

// Clone returns a deep copy so readers never alias store-owned maps.
func (p *PortfolioResult) Clone() *PortfolioResult {
	if p == nil {
		return nil
	}
	c := *p
	if p.Tickers != nil {
		c.Tickers = append([]string(nil), p.Tickers...)
	}
	c.Weights = cloneMap(p.Weights)
	c.Shares = cloneMap(p.Shares)
	if p.Performance != nil {
		c.Performance = make(map[time.Time]float64, len(p.Performance))
		for k, v := range p.Performance {
			c.Performance[k] = v
		}
	}
	return &c
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ErrInvalidInput is returned for a submission that fails local validation.
var ErrInvalidInput = errors.New("invalid submission input")

// SubmissionInput is the normalized request body of PUT /model.
type SubmissionInput struct {
	Value   float64  `json:"value"`
	Tickers []string `json:"tickers"`
}

// Validate checks the value is a finite positive number and at least one ticker is given.
func (s SubmissionInput) Validate() error {
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value <= 0 {
		return fmt.Errorf("%w: portfolio value must be a positive number", ErrInvalidInput)
	}
	if len(s.Tickers) == 0 {
		return fmt.Errorf("%w: at least one ticker is required", ErrInvalidInput)
	}
	return nil
}
