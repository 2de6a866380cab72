package tax

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Calculator computes tax results. Its rate is fixed at construction.
type Calculator struct {
	cfg  Config
	rate decimal.Decimal
	log  zerolog.Logger
}

// NewCalculator returns a calculator for cfg.
func NewCalculator(cfg Config) *Calculator {
	if cfg.Rates.Resident.IsZero() {
		cfg.Rates = DefaultRates()
	}
	c := &Calculator{cfg: cfg, rate: cfg.Rates.Resident, log: zerolog.Nop()}
	if cfg.NonResident {
		c.rate = cfg.Rates.NonResident
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	return c
}

// Rate returns the NDFL rate applied by the calculator.
func (c *Calculator) Rate() decimal.Decimal { return c.rate }

// yearly gathers the tax relevant flows of one calendar year.
type yearly struct {
	realized  map[portfolio.InstrumentType]decimal.Decimal
	events    []classifiedEvent
	dividends decimal.Decimal
	coupons   decimal.Decimal
	fees      decimal.Decimal
	withheld  decimal.Decimal
	deposits  map[string]decimal.Decimal // by account
}

type classifiedEvent struct {
	portfolio.RealizedEvent
	instrument portfolio.Instrument
}

// history is the classified transaction history up to the end of a tax year.
type history struct {
	years        map[int]*yearly
	books        map[portfolio.InstrumentType]*portfolio.Book
	instruments  map[string]portfolio.Instrument
	unclassified []string
	first        int
}

func (h *history) year(y int) *yearly {
	yd, ok := h.years[y]
	if !ok {
		yd = &yearly{
			realized: make(map[portfolio.InstrumentType]decimal.Decimal),
			deposits: make(map[string]decimal.Decimal),
		}
		h.years[y] = yd
	}
	return yd
}

// classify returns the instrument metadata, falling back to the
// conservative category for unknown instruments.
func (c *Calculator) classify(h *history, id string) portfolio.Instrument {
	if in, ok := h.instruments[id]; ok {
		return in
	}
	var in portfolio.Instrument
	var ok bool
	if c.cfg.Classifier != nil {
		in, ok = c.cfg.Classifier.Lookup(id)
	}
	if !ok || in.Type == "" {
		c.log.Warn().Str("instrument", id).Str("fallback", string(Fallback)).Msg("unclassified instrument")
		h.unclassified = append(h.unclassified, id)
		in = portfolio.Instrument{ID: id, Type: Fallback}
	}
	h.instruments[id] = in
	return in
}

// collect replays the history up to the end of year, with one FIFO book per
// security type.
func (c *Calculator) collect(txs []portfolio.Transaction, year int) (*history, error) {
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b portfolio.Transaction) int { return a.Time.Compare(b.Time) })

	h := &history{
		years:       make(map[int]*yearly),
		books:       make(map[portfolio.InstrumentType]*portfolio.Book),
		instruments: make(map[string]portfolio.Instrument),
		first:       year,
	}
	for _, tx := range sorted {
		if !tx.Time.Before(end) {
			break
		}
		y := tx.Time.Year()
		h.first = min(h.first, y)
		yd := h.year(y)
		yd.fees = yd.fees.Add(tx.Base(tx.Fee).Decimal())
		yd.withheld = yd.withheld.Add(tx.Base(tx.Tax).Decimal())

		switch tx.Kind {
		case portfolio.KindBuy, portfolio.KindSell:
			in := c.classify(h, tx.Instrument)
			book, ok := h.books[in.Type]
			if !ok {
				book = portfolio.NewBook()
				h.books[in.Type] = book
			}
			events, err := book.Apply(tx)
			if err != nil {
				return nil, fmt.Errorf("%s pass: %w", in.Type, err)
			}
			for _, e := range events {
				yd.realized[in.Type] = yd.realized[in.Type].Add(e.BaseGain().Decimal())
				yd.events = append(yd.events, classifiedEvent{RealizedEvent: e, instrument: in})
			}
		case portfolio.KindDividend:
			yd.dividends = yd.dividends.Add(tx.Base(tx.Gross).Decimal())
		case portfolio.KindCoupon:
			yd.coupons = yd.coupons.Add(tx.Base(tx.Gross).Decimal())
		case portfolio.KindDeposit:
			yd.deposits[tx.Account] = yd.deposits[tx.Account].Add(tx.Base(tx.Gross).Decimal())
		case portfolio.KindTax, portfolio.KindFee, portfolio.KindWithdrawal,
			portfolio.KindSplit, portfolio.KindSpinOff, portfolio.KindMerger:
			// fees and withheld tax are already accounted for
		}
	}
	for y := range c.cfg.PriorLosses {
		h.first = min(h.first, y)
	}
	return h, nil
}

// base is the running tax base of one year.
type base struct {
	income, expenses, taxable decimal.Decimal
	ldv, iis, loss            decimal.Decimal
	available, yearLoss       decimal.Decimal
	ndflBase                  decimal.Decimal
}

// assess computes the base of year y, drawing prior losses from pool and
// adding the year's loss to it.
func (c *Calculator) assess(yd *yearly, y int, portfolios []Portfolio, pool *lossPool) base {
	var b base
	for _, t := range slices.Sorted(maps.Keys(yd.realized)) {
		b.income = b.income.Add(yd.realized[t])
	}
	b.income = b.income.Add(yd.dividends).Add(yd.coupons)
	b.expenses = yd.fees
	net := b.income.Sub(b.expenses)
	b.taxable = decimal.Max(net, decimal.Zero)

	remaining := b.taxable
	b.ldv = decimal.Min(c.ldvExemption(yd.events), remaining)
	remaining = remaining.Sub(b.ldv)
	b.iis = decimal.Min(c.iisDeduction(yd, portfolios), remaining)
	remaining = remaining.Sub(b.iis)

	pool.expire(y, c.cfg.Rates.LossCarryoverYears)
	b.available = pool.total()
	b.loss = pool.consume(remaining)
	b.ndflBase = remaining.Sub(b.loss)

	if net.IsNegative() {
		b.yearLoss = net.Neg()
		pool.add(y, b.yearLoss)
	}
	if prior, ok := c.cfg.PriorLosses[y]; ok && prior.IsPositive() {
		pool.add(y, prior)
	}
	return b
}

// CalculateTaxes computes the tax result of year for the transactions of
// portfolios. Lots are reconstructed from the whole history up to the end of
// the year, and prior years are assessed to carry their losses forward.
// Integrity errors of the history are returned as is.
func (c *Calculator) CalculateTaxes(txs []portfolio.Transaction, portfolios []Portfolio, year int) (*Result, error) {
	h, err := c.collect(txs, year)
	if err != nil {
		return nil, fmt.Errorf("tax year %d: %w", year, err)
	}

	var pool lossPool
	var b base
	for y := h.first; y <= year; y++ {
		b = c.assess(h.year(y), y, portfolios, &pool)
	}
	yd := h.year(year)

	rub := portfolio.RUB[decimal.Decimal]
	ndfl := b.ndflBase.Mul(c.rate)
	r := &Result{
		Year:                   year,
		Rate:                   c.rate,
		TotalIncome:            rub(b.income),
		TotalExpenses:          rub(b.expenses),
		TaxableIncome:          rub(b.taxable),
		LDVExemption:           rub(b.ldv),
		IISDeduction:           rub(b.iis),
		LossCarryover:          rub(b.loss),
		LossCarryoverAvailable: rub(b.available),
		CurrentYearLoss:        rub(b.yearLoss),
		NDFLBase:               rub(b.ndflBase),
		NDFLAmount:             rub(ndfl),
		WithheldTax:            rub(yd.withheld),
		TaxDue:                 rub(decimal.Max(ndfl.Sub(yd.withheld), decimal.Zero)),
		StockPnL:               rub(yd.realized[portfolio.Stock]),
		BondPnL:                rub(yd.realized[portfolio.Bond]),
		DividendIncome:         rub(yd.dividends),
		CouponIncome:           rub(yd.coupons),
		PnLByType:              make(map[portfolio.InstrumentType]portfolio.Money, len(yd.realized)),
		Unclassified:           slices.Sorted(slices.Values(h.unclassified)),
	}
	for t, v := range yd.realized {
		r.PnLByType[t] = rub(v)
	}
	r.Positions = c.positions(h, portfolios)
	r.Recommendations = c.recommend(r, h, portfolios)
	return r, nil
}

// regimes maps accounts to the regime of their portfolio.
func regimes(portfolios []Portfolio) map[string]Regime {
	m := make(map[string]Regime)
	for _, p := range portfolios {
		for _, a := range p.Accounts {
			m[a] = p.Regime
		}
	}
	return m
}

// positions lists the open lots at the end of the year, by position.
func (c *Calculator) positions(h *history, portfolios []Portfolio) []Position {
	reg := regimes(portfolios)
	var out []Position
	for _, t := range slices.Sorted(maps.Keys(h.books)) {
		for _, hold := range h.books[t].Holdings() {
			p := Position{
				Account:      hold.Account,
				Instrument:   hold.Instrument,
				Type:         t,
				Regime:       cmp.Or(reg[hold.Account], Regular),
				Quantity:     hold.Quantity,
				AveragePrice: hold.AverageCost,
				Acquired:     date.FromTime(hold.Opened),
			}
			price, ok := c.cfg.Prices[hold.Instrument]
			if ok && price.Currency() != "" && hold.AverageCost.Currency() != "" && price.Currency() != hold.AverageCost.Currency() {
				c.log.Warn().Str("instrument", hold.Instrument).Str("price", price.Currency()).Str("cost", hold.AverageCost.Currency()).Msg("price currency differs from cost currency")
				ok = false
			}
			if ok {
				p.CurrentPrice = price
				p.UnrealizedPnL = price.Sub(hold.AverageCost).Mul(hold.Quantity)
				p.HasPrice = true
			}
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b Position) int {
		return cmp.Or(cmp.Compare(a.Account, b.Account), cmp.Compare(a.Instrument, b.Instrument))
	})
	return out
}
