package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/dimkit/dimkit/units"
	"github.com/dimkit/dimkit/units/catalog"
)

// loadEngineConfig reads the engine configuration. An empty path yields the
// zero configuration: embedded catalog, exact results, no metrics.
func loadEngineConfig(path string) (*catalog.Config, error) {
	if path == "" {
		return &catalog.Config{}, nil
	}
	cfg, err := catalog.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("loaded engine config from %s", path)
	return cfg, nil
}

// resolvePrecision layers the --precision / --rounding flags over the config
// defaults. Flags only apply when set explicitly. A nil context means exact
// output.
func resolvePrecision(cfg *catalog.Config, precision uint32, precisionSet bool, rounding string, roundingSet bool) (*units.PrecisionContext, error) {
	pc := units.PrecisionContext{Precision: cfg.DefaultPrecision, Rounding: cfg.DefaultRounding}
	if precisionSet {
		pc.Precision = precision
	}
	if roundingSet {
		pc.Rounding = rounding
	}
	if pc.Precision == 0 {
		if pc.Rounding != "" {
			return nil, fmt.Errorf("rounding %q requires a precision", pc.Rounding)
		}
		return nil, nil
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	return &pc, nil
}

// reportMetrics logs every gathered sample at info level.
func reportMetrics(g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logrus.Warnf("gathering metrics: %v", err)
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := ""
			for _, l := range m.GetLabel() {
				labels += fmt.Sprintf("%s=%q ", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				logrus.Infof("%s {%s} %g", f.GetName(), labels, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				logrus.Infof("%s {%s} %g", f.GetName(), labels, m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				logrus.Infof("%s {%s} count=%d sum=%g", f.GetName(), labels,
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}
