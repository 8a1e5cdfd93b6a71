package schema

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/bobmcallan/vire-optimizer/internal/models"
)

// timestampLayouts are the accepted performance series key formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a performance series key.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// DecodePortfolioResult validates a PUT /model success body.
//
// Required: status (string), return, volatility, sharpe (numbers), weights and
// shares (string -> number), performance (timestamp -> number).
// Optional: error (string), tickers (string array), value (number).
// Weights and shares key sets are not compared.
func DecodePortfolioResult(raw []byte) (models.PortfolioResult, error) {
	var res models.PortfolioResult

	obj, err := decodeObject(ContractPortfolioResult, raw)
	if err != nil {
		return res, err
	}

	if res.Status, err = obj.requiredString("status"); err != nil {
		return res, err
	}
	if res.Return, err = obj.requiredNumber("return"); err != nil {
		return res, err
	}
	if res.Volatility, err = obj.requiredNumber("volatility"); err != nil {
		return res, err
	}
	if res.Sharpe, err = obj.requiredNumber("sharpe"); err != nil {
		return res, err
	}
	if res.Weights, err = obj.requiredNumberMap("weights"); err != nil {
		return res, err
	}
	if res.Shares, err = obj.requiredNumberMap("shares"); err != nil {
		return res, err
	}
	if res.Performance, err = decodePerformance(obj); err != nil {
		return res, err
	}
	if res.Error, _, err = obj.optionalString("error"); err != nil {
		return res, err
	}
	if res.Tickers, _, err = obj.optionalStringSlice("tickers"); err != nil {
		return res, err
	}
	if res.Value, _, err = obj.optionalNumber("value"); err != nil {
		return res, err
	}

	return res, nil
}

func decodePerformance(obj *object) (map[time.Time]float64, error) {
	series, err := obj.requiredNumberMap("performance")
	if err != nil {
		return nil, err
	}
	out := make(map[time.Time]float64, len(series))
	for key, v := range series {
		ts, ok := ParseTimestamp(key)
		if !ok {
			return nil, obj.fail("performance key %q is not a timestamp", key)
		}
		if _, dup := out[ts]; dup {
			return nil, obj.fail("performance key %q repeats instant %s", key, ts.Format(time.RFC3339Nano))
		}
		out[ts] = v
	}
	return out, nil
}

// EncodePortfolioResult renders a result in the wire format DecodePortfolioResult
// accepts, with RFC 3339 performance keys.
func EncodePortfolioResult(p *models.PortfolioResult) ([]byte, error) {
	perf := make(map[string]float64, len(p.Performance))
	for ts, v := range p.Performance {
		perf[ts.UTC().Format(time.RFC3339Nano)] = v
	}
	wire := struct {
		Status      string             `json:"status"`
		Tickers     []string           `json:"tickers,omitempty"`
		Value       float64            `json:"value,omitempty"`
		Error       string             `json:"error,omitempty"`
		Return      float64            `json:"return"`
		Volatility  float64            `json:"volatility"`
		Sharpe      float64            `json:"sharpe"`
		Weights     map[string]float64 `json:"weights"`
		Shares      map[string]float64 `json:"shares"`
		Performance map[string]float64 `json:"performance"`
	}{
		Status:      p.Status,
		Tickers:     p.Tickers,
		Value:       p.Value,
		Error:       p.Error,
		Return:      p.Return,
		Volatility:  p.Volatility,
		Sharpe:      p.Sharpe,
		Weights:     nonNil(p.Weights),
		Shares:      nonNil(p.Shares),
		Performance: perf,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

func nonNil(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
