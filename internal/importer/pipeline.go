package importer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/mymoney/internal/institution"
	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

// TransformedData is the result of normalizing one export.
type TransformedData struct {
	Source      string
	Institution string
	Service     model.ServiceKind
	Account     string
	Out         model.OutKind

	// Sanity is the raw table with the derived columns joined on under
	// table.DerivedPrefix. Canonical is its projection.
	Sanity    *table.Table
	Canonical *table.Table
	// Valid is the validation mask, one entry per canonical row.
	Valid []bool

	Expenses []model.ExpenseRecord
	Trades   []model.TradeRecord
	Balances []model.BalanceRecord
}

// Rows returns the number of canonical rows.
func (td *TransformedData) Rows() int { return len(td.Valid) }

// Invalid returns the number of rows that failed validation.
func (td *TransformedData) Invalid() int {
	n := 0
	for _, ok := range td.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// LastDate returns the latest record date, or the zero time when no record
// has one.
func (td *TransformedData) LastDate() time.Time {
	var last time.Time
	seen := func(t time.Time) {
		if t.After(last) {
			last = t
		}
	}
	for _, r := range td.Expenses {
		seen(r.Date)
	}
	for _, r := range td.Trades {
		seen(r.Datetime)
	}
	for _, r := range td.Balances {
		seen(r.Date)
	}
	return last
}

// Batch collects the results of one pipeline run.
type Batch struct {
	Results []*TransformedData
	// Skipped lists files no signature matched.
	Skipped []string
}

// Expenses concatenates the expense records of every result, in order.
func (b *Batch) Expenses() []model.ExpenseRecord {
	var out []model.ExpenseRecord
	for _, td := range b.Results {
		out = append(out, td.Expenses...)
	}
	return out
}

// Trades concatenates the trade records of every result, in order.
func (b *Batch) Trades() []model.TradeRecord {
	var out []model.TradeRecord
	for _, td := range b.Results {
		out = append(out, td.Trades...)
	}
	return out
}

// Balances concatenates the balance records of every result, in order.
func (b *Batch) Balances() []model.BalanceRecord {
	var out []model.BalanceRecord
	for _, td := range b.Results {
		out = append(out, td.Balances...)
	}
	return out
}

// Table concatenates the canonical tables of every result of kind out.
func (b *Batch) Table(out model.OutKind) (*table.Table, error) {
	var ts []*table.Table
	for _, td := range b.Results {
		if td.Out == out {
			ts = append(ts, td.Canonical)
		}
	}
	if len(ts) == 0 {
		switch out {
		case model.OutExpense:
			return table.New(model.ExpenseColumns...), nil
		case model.OutTrade:
			return table.New(model.TradeColumns...), nil
		case model.OutBalance:
			return table.New(model.BalanceColumns...), nil
		}
		return nil, fmt.Errorf("unknown output kind %q", out)
	}
	return table.Concat(ts...)
}

// Pipeline runs detection, cleaning, validation and projection.
type Pipeline struct {
	sigs     *Signatures
	adapters *institution.Registry
	detector *Detector
	log      zerolog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(sigs *Signatures, adapters *institution.Registry, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		sigs:     sigs,
		adapters: adapters,
		detector: NewDetector(sigs, log),
		log:      log,
	}
}

// Detector returns the pipeline's detector.
func (p *Pipeline) Detector() *Detector { return p.detector }

// Run normalizes every export Scan finds in dir.
func (p *Pipeline) Run(dir string) (*Batch, error) {
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	b := &Batch{}
	for _, f := range files {
		if err := p.add(b, f.Path, f.Account); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// RunFile normalizes a single export.
func (p *Pipeline) RunFile(path, account string) (*Batch, error) {
	b := &Batch{}
	if err := p.add(b, path, account); err != nil {
		return nil, err
	}
	return b, nil
}

// RunAs normalizes a single export as the given institution and service.
func (p *Pipeline) RunAs(path, inst string, service model.ServiceKind, account string) (*Batch, error) {
	raw, err := p.detector.DetectAs(path, inst, service, account)
	if err != nil {
		return nil, err
	}
	td, err := p.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return &Batch{Results: []*TransformedData{td}}, nil
}

func (p *Pipeline) add(b *Batch, path, account string) error {
	raw, err := p.detector.Detect(path, account)
	if err != nil {
		return err
	}
	if raw == nil {
		b.Skipped = append(b.Skipped, path)
		return nil
	}
	td, err := p.Normalize(raw)
	if err != nil {
		return err
	}
	b.Results = append(b.Results, td)
	return nil
}

// Normalize cleans raw with its adapter, validates the derived records and
// projects them to the canonical table.
func (p *Pipeline) Normalize(raw *RawRecord) (*TransformedData, error) {
	log := p.log.With().Str("file", raw.Source).Str("signature", raw.Signature.Name()).Logger()
	checker := validate.NewChecker(log)

	out, err := raw.Signature.OutKind()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Source, err)
	}
	adapter, err := p.adapters.Lookup(raw.Institution, raw.Service)
	if err != nil {
		return nil, err
	}

	if len(raw.Signature.Schema) > 0 {
		opts := validate.Options{Log: true, Raise: raw.Signature.Strict}
		if err := checker.HasSchema(raw.Table, raw.Signature.Schema, opts); err != nil {
			return nil, fmt.Errorf("%s: %w", raw.Source, err)
		}
	}

	res, err := adapter.Clean(raw.Table, raw.Account)
	if err != nil {
		return nil, fmt.Errorf("cleaning %s as %s: %w", raw.Source, raw.Signature.Name(), err)
	}

	var derived *table.Table
	switch out {
	case model.OutExpense:
		derived = ExpenseTable(res.Expenses)
	case model.OutTrade:
		derived = TradeTable(res.Trades)
	case model.OutBalance:
		derived = BalanceTable(res.Balances)
	default:
		return nil, fmt.Errorf("%s: unknown output kind %q", raw.Source, out)
	}

	valid, err := checker.HasTableValues(derived, p.sigs.Rules(out), validate.LogOnly)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", raw.Source, err)
	}
	if out == model.OutExpense {
		for i := range res.Expenses {
			res.Expenses[i].IsValid = valid[i]
			if err := derived.Set(i, "IsValid", valid[i]); err != nil {
				return nil, fmt.Errorf("%s: %w", raw.Source, err)
			}
		}
	}

	sanity, err := table.Sanity(res.Raw, derived)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Source, err)
	}

	td := &TransformedData{
		Source:      raw.Source,
		Institution: raw.Institution,
		Service:     raw.Service,
		Account:     raw.Account,
		Out:         out,
		Sanity:      sanity,
		Canonical:   table.Project(sanity),
		Valid:       valid,
		Expenses:    res.Expenses,
		Trades:      res.Trades,
		Balances:    res.Balances,
	}
	log.Info().Int("rows", td.Rows()).Int("invalid", td.Invalid()).Str("out", string(out)).Msg("normalized")
	return td, nil
}
