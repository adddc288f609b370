// Package institution maps raw exports of each supported financial source
// to canonical expense and trade records.
package institution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
)

// Result is what an adapter derives from one raw table.
//
// Raw holds the raw rows the adapter kept, one per record, so that derived
// fields can be joined back onto the source columns for auditing. Expense
// adapters fill Expenses, exchange adapters fill Trades. Only canonical
// re-imports carry Balances.
type Result struct {
	Raw      *table.Table
	Expenses []model.ExpenseRecord
	Trades   []model.TradeRecord
	Balances []model.BalanceRecord
}

// Adapter cleans the raw export of one (institution, service) pair.
type Adapter interface {
	Clean(raw *table.Table, account string) (Result, error)
}

// AdapterFunc lets a plain function serve as an Adapter.
type AdapterFunc func(raw *table.Table, account string) (Result, error)

// Clean calls f.
func (f AdapterFunc) Clean(raw *table.Table, account string) (Result, error) {
	return f(raw, account)
}

// UnsupportedInstitutionError is returned for an institution with no adapters.
type UnsupportedInstitutionError struct {
	Institution string
}

func (e *UnsupportedInstitutionError) Error() string {
	return fmt.Sprintf("institution %q is not supported: register an adapter for it to add support", e.Institution)
}

// UnsupportedServiceError is returned when an institution has adapters, but
// not for the requested service.
type UnsupportedServiceError struct {
	Institution string
	Service     model.ServiceKind
}

func (e *UnsupportedServiceError) Error() string {
	return fmt.Sprintf("institution %q has no %s service: register an adapter for it to add support", e.Institution, e.Service)
}

type key struct {
	institution string
	service     model.ServiceKind
}

// Registry holds adapters keyed by institution and service.
type Registry struct {
	adapters map[key]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[key]Adapter)}
}

// Register adds an adapter. Panics on a duplicate (institution, service).
func (r *Registry) Register(institution string, service model.ServiceKind, a Adapter) {
	k := key{strings.ToLower(institution), service}
	if _, ok := r.adapters[k]; ok {
		panic(fmt.Sprintf("duplicate adapter: %s/%s", k.institution, service))
	}
	r.adapters[k] = a
}

// Lookup returns the adapter for institution and service.
func (r *Registry) Lookup(institution string, service model.ServiceKind) (Adapter, error) {
	name := strings.ToLower(institution)
	if a, ok := r.adapters[key{name, service}]; ok {
		return a, nil
	}
	for k := range r.adapters {
		if k.institution == name {
			return nil, &UnsupportedServiceError{Institution: name, Service: service}
		}
	}
	return nil, &UnsupportedInstitutionError{Institution: name}
}

// Services lists the registered (institution, service) pairs, sorted.
func (r *Registry) Services() []string {
	out := make([]string, 0, len(r.adapters))
	for k := range r.adapters {
		out = append(out, k.institution+"/"+k.service.String())
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with every built-in adapter.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("base", model.ServiceBase, AdapterFunc(baseImport))
	r.Register("amex", model.ServiceCredit, AdapterFunc(amexCredit))
	r.Register("capitalone", model.ServiceCredit, AdapterFunc(capitalOneCredit))
	r.Register("capitalone", model.ServiceDebit, AdapterFunc(capitalOneDebit))
	r.Register("cashapp", model.ServiceThirdParty, AdapterFunc(cashAppThirdParty))
	r.Register("chase", model.ServiceCredit, AdapterFunc(chaseCredit))
	r.Register("chase", model.ServiceDebit, AdapterFunc(chaseDebit))
	r.Register("citi", model.ServiceCredit, AdapterFunc(citiCredit))
	r.Register("coinbase", model.ServiceExchange, AdapterFunc(coinbaseExchange))
	r.Register("cryptodotcom", model.ServiceExchange, AdapterFunc(cryptoDotComExchange))
	r.Register("discover", model.ServiceCredit, AdapterFunc(discoverCredit))
	r.Register("paypal", model.ServiceThirdParty, AdapterFunc(payPalThirdParty))
	r.Register("samsclub", model.ServiceCredit, AdapterFunc(samsClubCredit))
	r.Register("sofi", model.ServiceDebit, AdapterFunc(soFiDebit))
	r.Register("uphold", model.ServiceExchange, AdapterFunc(upholdExchange))
	r.Register("venmo", model.ServiceThirdParty, AdapterFunc(venmoThirdParty))
	r.Register("wellsfargo", model.ServiceCredit, AdapterFunc(wellsFargoCredit))
	r.Register("wellsfargo", model.ServiceDebit, AdapterFunc(wellsFargoDebit))
	return r
}
