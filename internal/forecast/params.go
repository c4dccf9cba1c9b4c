package forecast

import "fmt"

// Order is a (p, d, q) triple.
type Order struct {
	P, D, Q int
}

// Params configures one seasonal ARIMA forecast on the log of a series.
type Params struct {
	Order    Order
	Seasonal Order
	Period   int
	Horizon  int

	// Scale multiplies every value before the log transform and divides every
	// prediction after it. Zero means 1.
	Scale float64
	// ZeroFloor replaces scaled values that are not positive. Zero disables
	// the floor, in which case such values fail the forecast.
	ZeroFloor float64
}

// DefaultHorizon is the number of days predicted after the last observation.
const DefaultHorizon = 31

// NationalParams is used for the aggregate France series.
var NationalParams = Params{
	Order:    Order{P: 4, D: 0, Q: 2},
	Seasonal: Order{P: 4, D: 0, Q: 2},
	Period:   7,
	Horizon:  DefaultHorizon,
}

// DepartmentParams is used for per-department series, which are small and
// often contain zero days.
var DepartmentParams = Params{
	Order:     Order{P: 1, D: 0, Q: 2},
	Seasonal:  Order{P: 1, D: 0, Q: 1},
	Period:    7,
	Horizon:   DefaultHorizon,
	Scale:     100,
	ZeroFloor: 1,
}

// WithHorizon returns a copy predicting n days.
func (p Params) WithHorizon(n int) Params {
	p.Horizon = n
	return p
}

func (p Params) scale() float64 {
	if p.Scale == 0 {
		return 1
	}
	return p.Scale
}

// Minimum series length above the number of model terms, as required by
// goarima's seasonal and non-seasonal fits.
const (
	seasonalMargin = 20
	arimaMargin    = 10
)

// SeasonalObservations is the shortest series the full seasonal model can be
// fitted on. Shorter series fall back to a non-seasonal ARIMA of ShortOrder.
func (p Params) SeasonalObservations() int {
	return p.Order.P + p.Order.D + p.Order.Q +
		(p.Seasonal.P+p.Seasonal.D+p.Seasonal.Q)*p.Period + seasonalMargin
}

// MinObservations is the shortest series the forecaster accepts: enough for
// a non-seasonal fit keeping the differencing and one autoregressive term.
func (p Params) MinObservations() int {
	return max(p.Order.D+min(p.Order.P, 1)+arimaMargin, 2)
}

// ShortOrder reduces the non-seasonal order until it can be fitted on n
// observations. Moving-average terms go first, and one autoregressive term is
// always kept when the order has any. It reports false when n is too short.
func (p Params) ShortOrder(n int) (Order, bool) {
	o := p.Order
	for o.P+o.D+o.Q+arimaMargin > n {
		switch {
		case o.Q > 0 && (o.Q >= o.P || o.P <= 1):
			o.Q--
		case o.P > 1:
			o.P--
		default:
			return o, false
		}
	}
	return o, true
}

// Validate rejects parameter sets the model cannot use.
func (p Params) Validate() error {
	switch {
	case p.Horizon < 1:
		return fmt.Errorf("horizon must be positive, got %d", p.Horizon)
	case p.Period < 0:
		return fmt.Errorf("period must not be negative, got %d", p.Period)
	case p.Scale < 0:
		return fmt.Errorf("scale must not be negative, got %g", p.Scale)
	case p.ZeroFloor < 0:
		return fmt.Errorf("zero floor must not be negative, got %g", p.ZeroFloor)
	}
	for _, v := range []int{p.Order.P, p.Order.D, p.Order.Q, p.Seasonal.P, p.Seasonal.D, p.Seasonal.Q} {
		if v < 0 {
			return fmt.Errorf("orders must not be negative: %s", p)
		}
	}
	return nil
}

// String renders the parameters in the usual SARIMA notation.
func (p Params) String() string {
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d,%d) h=%d scale=%g floor=%g",
		p.Order.P, p.Order.D, p.Order.Q,
		p.Seasonal.P, p.Seasonal.D, p.Seasonal.Q, p.Period,
		p.Horizon, p.scale(), p.ZeroFloor)
}
