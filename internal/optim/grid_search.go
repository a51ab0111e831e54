package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/experiment"
	"github.com/san-kum/dsmcdb/internal/logging"
)

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64
	Value  float64 // ensemble mean of the metric; NaN when never reached
	Err    error
}

// GridSearch runs the base configuration at every combination of
// parameter values and minimizes one result metric.
type GridSearch struct {
	base       *config.Config
	paramNames []string
	ranges     [][]float64
	log        logging.Logger
}

func NewGridSearch(base *config.Config, params []string, ranges [][]float64, log logging.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	probe := base.Clone()
	for i, name := range params {
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", name)
		}
		if err := Set(probe, name, ranges[i][0]); err != nil {
			return nil, err
		}
	}
	return &GridSearch{base: base, paramNames: params, ranges: ranges, log: logging.OrNoOp(log)}, nil
}

// Search evaluates every grid point and returns them all, plus the best
// one. Negative metric values mean the quantity was never reached and are
// not eligible.
func (g *GridSearch) Search(ctx context.Context, metricName string) ([]Point, *Point, error) {
	var points []Point
	g.searchRecursive(ctx, 0, make(map[string]float64), metricName, &points)
	if err := ctx.Err(); err != nil {
		return points, nil, err
	}

	var best *Point
	for i := range points {
		p := &points[i]
		if p.Err != nil || math.IsNaN(p.Value) {
			continue
		}
		if best == nil || p.Value < best.Value {
			best = p
		}
	}
	return points, best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, metricName string, points *[]Point) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		*points = append(*points, g.evaluate(ctx, current, metricName))
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, metricName, points)
	}
}

func (g *GridSearch) evaluate(ctx context.Context, params map[string]float64, metricName string) Point {
	p := Point{Params: params, Value: math.NaN()}

	cfg := g.base.Clone()
	for name, val := range params {
		if err := Set(cfg, name, val); err != nil {
			p.Err = err
			return p
		}
	}
	exp, err := experiment.New(cfg, g.log)
	if err != nil {
		p.Err = err
		return p
	}
	results, err := exp.Run(ctx)
	if err != nil {
		p.Err = err
		return p
	}

	sum, n := 0.0, 0
	for _, r := range results {
		v, ok := r.Metrics[metricName]
		if !ok {
			p.Err = fmt.Errorf("optim: unknown metric %s", metricName)
			return p
		}
		if v < 0 {
			return p
		}
		sum += v
		n++
	}
	if n > 0 {
		p.Value = sum / float64(n)
	}
	g.log.Debugf("grid point %v: %s=%g", params, metricName, p.Value)
	return p
}

// Set assigns a sweepable parameter. Population entries are addressed as
// temperature.<i> and count.<i>.
func Set(cfg *config.Config, name string, val float64) error {
	switch name {
	case "majorant_speed_factor":
		cfg.MajorantSpeedFactor = val
		return nil
	case "pairs_per_step":
		cfg.PairsPerStep = int(val)
		return nil
	case "steps":
		cfg.Steps = int(val)
		return nil
	}

	field, idxStr, ok := strings.Cut(name, ".")
	if !ok {
		return fmt.Errorf("optim: unknown parameter %s", name)
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 || idx >= len(cfg.Population) {
		return fmt.Errorf("optim: %s: no population entry %s", name, idxStr)
	}
	switch field {
	case "temperature":
		cfg.Population[idx].Temperature = val
	case "count":
		cfg.Population[idx].Count = int(val)
	default:
		return fmt.Errorf("optim: unknown parameter %s", name)
	}
	return nil
}

// ParseRange reads "name=v1,v2,..." into a parameter name and values.
func ParseRange(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("optim: expected name=v1,v2,... got %q", s)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
