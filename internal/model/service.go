package model

import (
	"fmt"
	"strings"
)

// ServiceKind is the kind of account export an institution produced.
type ServiceKind int

const (
	ServiceBase ServiceKind = iota
	ServiceDebit
	ServiceCredit
	ServiceThirdParty
	ServiceExchange
)

var serviceNames = [...]string{
	ServiceBase:       "base",
	ServiceDebit:      "debit",
	ServiceCredit:     "credit",
	ServiceThirdParty: "thirdparty",
	ServiceExchange:   "exchange",
}

func (s ServiceKind) String() string {
	if s < 0 || int(s) >= len(serviceNames) {
		return fmt.Sprintf("ServiceKind(%d)", int(s))
	}
	return serviceNames[s]
}

// ParseServiceKind maps a service name to a ServiceKind.
// "3rdparty" is accepted as an alias of "thirdparty".
func ParseServiceKind(name string) (ServiceKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "base":
		return ServiceBase, nil
	case "debit":
		return ServiceDebit, nil
	case "credit":
		return ServiceCredit, nil
	case "thirdparty", "3rdparty":
		return ServiceThirdParty, nil
	case "exchange":
		return ServiceExchange, nil
	}
	return 0, fmt.Errorf("unknown service kind %q", name)
}

// MarshalText and UnmarshalText let service kinds appear as names in config files.
func (s ServiceKind) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ServiceKind) UnmarshalText(b []byte) error {
	k, err := ParseServiceKind(string(b))
	if err != nil {
		return err
	}
	*s = k
	return nil
}

// OutKind selects which canonical table a transformed file belongs to.
type OutKind string

const (
	OutExpense OutKind = "expense"
	OutTrade   OutKind = "trade"
	OutBalance OutKind = "balance"
)

// OutKind returns the canonical table for records of this service kind.
func (s ServiceKind) OutKind() (OutKind, error) {
	switch s {
	case ServiceDebit, ServiceCredit, ServiceThirdParty:
		return OutExpense, nil
	case ServiceExchange:
		return OutTrade, nil
	case ServiceBase:
		return "", fmt.Errorf("service %q has no canonical table", s)
	}
	return "", fmt.Errorf("unknown service kind %d", int(s))
}
