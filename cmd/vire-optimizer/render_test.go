package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/vire-optimizer/internal/models"
	"github.com/bobmcallan/vire-optimizer/internal/orchestrator"
)

func TestRenderPortfolio(t *testing.T) {
	p := &models.PortfolioResult{
		Status:     models.StatusOK,
		Value:      10000,
		Return:     0.1234,
		Volatility: 0.2,
		Sharpe:     0.617,
		Weights:    map[string]float64{"MSFT": 0.4, "AAPL": 0.6},
		Shares:     map[string]float64{"MSFT": 2, "AAPL": 5},
		Performance: map[time.Time]float64{
			time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC): 1010,
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC): 1000,
		},
	}

	var buf bytes.Buffer
	renderPortfolio(&buf, p)
	out := buf.String()

	for _, want := range []string{"Portfolio value", "$10,000.00", "Expected return", "+12.34%", "Sharpe ratio", "0.617", "AAPL", "60.00%", "2024-01-02", "1010"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "AAPL") > strings.Index(out, "MSFT") {
		t.Error("tickers should be listed in lexical order")
	}
	if strings.Index(out, "2024-01-02") > strings.Index(out, "2024-01-03") {
		t.Error("performance should be listed in time order")
	}
	if strings.Contains(out, "$1,010.00") || strings.Contains(out, "$1,000.00") {
		t.Errorf("performance values are not currency:\n%s", out)
	}
}

func TestRenderPortfolio_IntradayPerformance(t *testing.T) {
	p := &models.PortfolioResult{
		Status:  models.StatusOK,
		Weights: map[string]float64{"AAPL": 1},
		Shares:  map[string]float64{"AAPL": 1},
		Performance: map[time.Time]float64{
			time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC):  1.0,
			time.Date(2024, 1, 2, 16, 0, 0, 0, time.UTC):  1.0125,
			time.Date(2024, 1, 2, 12, 45, 0, 0, time.UTC): 0.99871,
		},
	}

	var buf bytes.Buffer
	renderPortfolio(&buf, p)
	out := buf.String()

	for _, want := range []string{"2024-01-02T09:30:00Z", "2024-01-02T12:45:00Z", "2024-01-02T16:00:00Z", "1.0125", "0.9987"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "T09:30") > strings.Index(out, "T12:45") || strings.Index(out, "T12:45") > strings.Index(out, "T16:00") {
		t.Errorf("intraday points should be listed in time order:\n%s", out)
	}
}

func TestRenderPortfolio_Error(t *testing.T) {
	var buf bytes.Buffer
	renderPortfolio(&buf, &models.PortfolioResult{
		Status:  models.StatusError,
		Error:   "Unknown ticker ZZZZ",
		Weights: map[string]float64{"AAPL": 1},
	})
	out := buf.String()
	if !strings.Contains(out, "Unknown ticker ZZZZ") {
		t.Errorf("expected error message, got:\n%s", out)
	}
	if strings.Contains(out, "Allocation") {
		t.Error("stale allocation should not be rendered for an error state")
	}
}

func TestRenderPortfolio_Nil(t *testing.T) {
	var buf bytes.Buffer
	renderPortfolio(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestRenderHealthAndCredential(t *testing.T) {
	var buf bytes.Buffer
	renderHealth(&buf, orchestrator.HealthStatus{Warning: "optimization service returned status 500"})
	renderCredential(&buf, models.Credential{Error: models.MessageAuthRejected})
	renderCredential(&buf, models.Credential{})
	out := buf.String()

	for _, want := range []string{"status 500", models.MessageAuthRejected, "Credential: none"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigSearchPaths_Deduplicated(t *testing.T) {
	paths := configSearchPaths()
	if len(paths) == 0 {
		t.Fatal("expected candidate paths")
	}
	seen := map[string]bool{}
	for _, p := range paths {
		if seen[p] {
			t.Errorf("duplicate path %s", p)
		}
		seen[p] = true
	}
}
