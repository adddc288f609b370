package importer

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

//go:embed signatures.yaml
var builtinSignatures []byte

// Signature describes what one (institution, service) export looks like.
type Signature struct {
	Institution string            `yaml:"-"`
	Service     model.ServiceKind `yaml:"service"`
	// Out overrides the canonical table implied by Service. Canonical
	// re-imports need it because their service is base.
	Out     model.OutKind            `yaml:"out,omitempty"`
	Columns []string                 `yaml:"columns"`
	Match   validate.MatchMode       `yaml:"match,omitempty"`
	Read    table.ParseOptions       `yaml:"read,omitempty"`
	Checks  map[string]validate.Rule `yaml:"checks,omitempty"`
	Schema  map[string]string        `yaml:"schema,omitempty"`
	Strict  bool                     `yaml:"strict,omitempty"`
}

// Name is the "institution/service" label used in logs.
func (s *Signature) Name() string {
	return s.Institution + "/" + s.Service.String()
}

// OutKind returns the canonical table the signature's records go to.
func (s *Signature) OutKind() (model.OutKind, error) {
	if s.Out != "" {
		return s.Out, nil
	}
	return s.Service.OutKind()
}

// Signatures is the detection registry plus the value rules every
// canonical table is validated against.
type Signatures struct {
	Defaults map[model.OutKind]map[string]validate.Rule
	list     []*Signature
}

type signatureFile struct {
	Defaults     map[model.OutKind]map[string]validate.Rule `yaml:"defaults"`
	Institutions []struct {
		Name     string       `yaml:"name"`
		Services []*Signature `yaml:"services"`
	} `yaml:"institutions"`
}

// ParseSignatures decodes a signature document.
func ParseSignatures(data []byte) (*Signatures, error) {
	var f signatureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing signatures: %w", err)
	}

	s := &Signatures{Defaults: f.Defaults}
	for _, inst := range f.Institutions {
		for _, sig := range inst.Services {
			sig.Institution = inst.Name
			if len(sig.Columns) == 0 {
				return nil, fmt.Errorf("signature %s: no columns", sig.Name())
			}
			if _, err := sig.OutKind(); err != nil {
				return nil, fmt.Errorf("signature %s: %w", sig.Name(), err)
			}
			s.list = append(s.list, sig)
		}
	}
	return s, nil
}

// DefaultSignatures returns the built-in registry.
func DefaultSignatures() *Signatures {
	s, err := ParseSignatures(builtinSignatures)
	if err != nil {
		panic(err)
	}
	return s
}

// All returns the signatures in detection order.
func (s *Signatures) All() []*Signature {
	return s.list
}

// Find returns the first signature for institution and service, or nil.
func (s *Signatures) Find(institution string, service model.ServiceKind) *Signature {
	for _, sig := range s.list {
		if sig.Institution == institution && sig.Service == service {
			return sig
		}
	}
	return nil
}

// Rules returns the value rules for a canonical table.
func (s *Signatures) Rules(out model.OutKind) map[string]validate.Rule {
	return s.Defaults[out]
}
