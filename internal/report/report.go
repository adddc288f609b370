// Package report summarizes stored expense records: spend per category,
// institution or account over time, totals and the latest activity per
// account.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/model"
)

// ErrNoRecords is returned by New for an empty record set.
var ErrNoRecords = errors.New("no expense records to report on")

// Analysis splits records by transfer class.
type Analysis struct {
	all       []model.ExpenseRecord
	expenses  []model.ExpenseRecord
	transfers []model.ExpenseRecord
	redundant []model.ExpenseRecord
}

func New(recs []model.ExpenseRecord) (*Analysis, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	a := &Analysis{all: recs}
	for _, r := range recs {
		switch r.IsTransfer {
		case model.ClassExpense:
			a.expenses = append(a.expenses, r)
		case model.ClassTransfer:
			a.transfers = append(a.transfers, r)
		case model.ClassRedundant:
			a.redundant = append(a.redundant, r)
		}
	}
	return a, nil
}

func (a *Analysis) Expenses() []model.ExpenseRecord  { return a.expenses }
func (a *Analysis) Transfers() []model.ExpenseRecord { return a.transfers }
func (a *Analysis) Redundant() []model.ExpenseRecord { return a.redundant }

// Categories returns the distinct MyCategory values, sorted. Records
// without a category are left out.
func (a *Analysis) Categories() []string {
	seen := map[string]bool{}
	for _, r := range a.all {
		if r.MyCategory != nil {
			seen[*r.MyCategory] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Dimension names a column expenses can be grouped by.
type Dimension string

const (
	ByCategory    Dimension = "MyCategory"
	ByInstitution Dimension = "Institution"
	ByAccount     Dimension = "AccountName"
)

// ParseDimension accepts the column name or a short alias.
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(s) {
	case "mycategory", "category", "cat":
		return ByCategory, nil
	case "institution", "inst":
		return ByInstitution, nil
	case "accountname", "account", "acc":
		return ByAccount, nil
	}
	return "", fmt.Errorf("unknown grouping %q: use category, institution or account", s)
}

// key returns r's group key; ok is false when r has no value for d.
func (d Dimension) key(r model.ExpenseRecord) (k string, ok bool) {
	switch d {
	case ByCategory:
		if r.MyCategory == nil {
			return "", false
		}
		return *r.MyCategory, true
	case ByInstitution:
		return r.Institution, true
	case ByAccount:
		return r.AccountName, true
	}
	return "", false
}

// Bucket is the summed amount of one period, labeled by Period.
type Bucket struct {
	Period time.Time
	Amount decimal.Decimal
}

// Spend sums expense amounts per value of d and per period. Each key's
// series runs without gaps from its first to its last period; empty periods
// sum to zero. Records without a date, amount or key are skipped.
func (a *Analysis) Spend(d Dimension, f Freq) map[string][]Bucket {
	sums := map[string]map[time.Time]decimal.Decimal{}
	for _, r := range a.expenses {
		k, ok := d.key(r)
		if !ok || r.Date.IsZero() || !r.AmountValid {
			continue
		}
		if sums[k] == nil {
			sums[k] = map[time.Time]decimal.Decimal{}
		}
		p := f.Label(r.Date)
		sums[k][p] = sums[k][p].Add(r.Amount)
	}

	out := make(map[string][]Bucket, len(sums))
	for k, byPeriod := range sums {
		var first, last time.Time
		for p := range byPeriod {
			if first.IsZero() || p.Before(first) {
				first = p
			}
			if p.After(last) {
				last = p
			}
		}
		var series []Bucket
		for p := first; !p.After(last); p = f.Next(p) {
			series = append(series, Bucket{Period: p, Amount: byPeriod[p]})
		}
		out[k] = series
	}
	return out
}

func (a *Analysis) CategorySpend(f Freq) map[string][]Bucket    { return a.Spend(ByCategory, f) }
func (a *Analysis) InstitutionSpend(f Freq) map[string][]Bucket { return a.Spend(ByInstitution, f) }
func (a *Analysis) AccountSpend(f Freq) map[string][]Bucket     { return a.Spend(ByAccount, f) }

// Total is the summed expense amount of one group. Key holds the
// institution before the account name when grouping by account.
type Total struct {
	Key    []string
	Amount decimal.Decimal
}

// OverallSpend sums expenses per value of d, sorted by amount ascending so
// the largest spend (most negative) comes first.
func (a *Analysis) OverallSpend(d Dimension) []Total {
	sums := map[string]*Total{}
	var order []string
	for _, r := range a.expenses {
		k, ok := d.key(r)
		if !ok || !r.AmountValid {
			continue
		}
		key := []string{k}
		if d == ByAccount {
			key = []string{r.Institution, k}
		}
		id := strings.Join(key, "\x00")
		t, ok := sums[id]
		if !ok {
			t = &Total{Key: key}
			sums[id] = t
			order = append(order, id)
		}
		t.Amount = t.Amount.Add(r.Amount)
	}

	out := make([]Total, 0, len(order))
	for _, id := range order {
		out = append(out, *sums[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c < 0
		}
		return strings.Join(out[i].Key, "/") < strings.Join(out[j].Key, "/")
	})
	return out
}

// LastDate is the most recent record date of one account.
type LastDate struct {
	Institution string
	AccountName string
	Service     model.ServiceKind
	LastDate    time.Time
}

// LastDates returns the latest record date per (institution, account,
// service) over all records, sorted by sortBy: date, service,
// institution (inst) or accountname (account, acc).
func (a *Analysis) LastDates(sortBy string) ([]LastDate, error) {
	less, err := lastDateOrder(sortBy)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		inst, acc string
		svc       model.ServiceKind
	}
	latest := map[groupKey]time.Time{}
	for _, r := range a.all {
		k := groupKey{r.Institution, r.AccountName, r.Service}
		if r.Date.After(latest[k]) {
			latest[k] = r.Date
		} else if _, ok := latest[k]; !ok {
			latest[k] = time.Time{}
		}
	}

	out := make([]LastDate, 0, len(latest))
	for k, d := range latest {
		out = append(out, LastDate{Institution: k.inst, AccountName: k.acc, Service: k.svc, LastDate: d})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func lastDateOrder(sortBy string) (func(a, b LastDate) bool, error) {
	tie := func(a, b LastDate) bool {
		if a.Institution != b.Institution {
			return a.Institution < b.Institution
		}
		if a.AccountName != b.AccountName {
			return a.AccountName < b.AccountName
		}
		return a.Service < b.Service
	}
	switch strings.ToLower(sortBy) {
	case "", "institution", "inst":
		return tie, nil
	case "date":
		return func(a, b LastDate) bool {
			if !a.LastDate.Equal(b.LastDate) {
				return a.LastDate.Before(b.LastDate)
			}
			return tie(a, b)
		}, nil
	case "service":
		return func(a, b LastDate) bool {
			if a.Service != b.Service {
				return a.Service < b.Service
			}
			return tie(a, b)
		}, nil
	case "accountname", "account", "acc":
		return func(a, b LastDate) bool {
			if a.AccountName != b.AccountName {
				return a.AccountName < b.AccountName
			}
			return tie(a, b)
		}, nil
	}
	return nil, fmt.Errorf("unknown sort %q: use date, institution, service or account", sortBy)
}

// Accounts returns the distinct (institution, account, service) triples
// sorted by institution.
func (a *Analysis) Accounts() []LastDate {
	out, _ := a.LastDates("institution")
	for i := range out {
		out[i].LastDate = time.Time{}
	}
	return out
}
