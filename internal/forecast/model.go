package forecast

import (
	"errors"
	"fmt"

	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/sarima"
	"github.com/sartorproj/goarima/timeseries"
)

// Model fits a series and predicts the periods that follow it.
type Model interface {
	Fit(values []float64) error
	Predict(n int) ([]float64, error)
}

// ModelFactory builds a fresh, unfitted model for a parameter set.
type ModelFactory func(Params) Model

// goarimaFitter is the part of the goarima models used here.
type goarimaFitter interface {
	Fit(series *timeseries.Series) error
	Predict(n int) ([]float64, error)
}

// SARIMA is the production ModelFactory backed by goarima. Series shorter
// than p.SeasonalObservations() are fitted with a non-seasonal ARIMA of
// p.ShortOrder instead.
func SARIMA(p Params) Model {
	return &goarimaModel{params: p}
}

type goarimaModel struct {
	params Params
	m      goarimaFitter
	desc   string
}

func (g *goarimaModel) Fit(values []float64) error {
	p := g.params
	if len(values) >= p.SeasonalObservations() {
		g.m = sarima.New(
			p.Order.P, p.Order.D, p.Order.Q,
			p.Seasonal.P, p.Seasonal.D, p.Seasonal.Q,
			p.Period,
		)
		g.desc = p.String()
	} else {
		o, ok := p.ShortOrder(len(values))
		if !ok {
			return fmt.Errorf("%d observations are too few for %s", len(values), p)
		}
		g.m = arima.New(o.P, o.D, o.Q)
		g.desc = fmt.Sprintf("ARIMA(%d,%d,%d) h=%d scale=%g floor=%g",
			o.P, o.D, o.Q, p.Horizon, p.scale(), p.ZeroFloor)
	}
	return g.m.Fit(&timeseries.Series{Values: values})
}

func (g *goarimaModel) Predict(n int) ([]float64, error) {
	if g.m == nil {
		return nil, errors.New("model is not fitted")
	}
	return g.m.Predict(n)
}

// String names the model actually fitted.
func (g *goarimaModel) String() string { return g.desc }
