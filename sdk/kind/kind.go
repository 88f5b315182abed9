// Package kind
// the closed set of experiment kinds known to the dashboard
package kind

import (
	"sort"
	"strings"

	"github.com/chaos-mesh/chaos-mesh/api/v1alpha1"
	"github.com/pkg/errors"
)

// Kind identifies which category of fault an experiment injects.
type Kind string

const (
	PodChaos     Kind = "PodChaos"
	NetworkChaos Kind = "NetworkChaos"
	IoChaos      Kind = "IoChaos"
	KernelChaos  Kind = "KernelChaos"
	TimeChaos    Kind = "TimeChaos"
	StressChaos  Kind = "StressChaos"
	DNSChaos     Kind = "DNSChaos"
	AwsChaos     Kind = "AwsChaos"
	GcpChaos     Kind = "GcpChaos"
)

var all = []Kind{
	PodChaos,
	NetworkChaos,
	IoChaos,
	KernelChaos,
	TimeChaos,
	StressChaos,
	DNSChaos,
	AwsChaos,
	GcpChaos,
}

// All returns every known kind in dashboard order. The returned slice is a copy.
func All() []Kind {
	kinds := make([]Kind, len(all))
	copy(kinds, all)
	return kinds
}

// Parse matches s against the known kinds ignoring case, so the API spellings
// (IOChaos, AWSChaos, GCPChaos) resolve to the same kinds.
func Parse(s string) (Kind, bool) {
	for _, k := range all {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// Known reports whether k is a member of the enumeration.
func (k Kind) Known() bool {
	for _, known := range all {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ClusterKind returns the name the chaos-mesh API registers for k.
func (k Kind) ClusterKind() (string, bool) {
	return lookup(k, registeredKinds())
}

func lookup(k Kind, registered []string) (string, bool) {
	for _, name := range registered {
		if name == string(k) {
			return name, true
		}
	}
	for _, name := range registered {
		if strings.EqualFold(name, string(k)) {
			return name, true
		}
	}
	return "", false
}

func registeredKinds() []string {
	registered := v1alpha1.AllKinds()
	names := make([]string, 0, len(registered))
	for name := range registered {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Verify checks that every known kind is present in external.
func Verify(external []string) error {
	var missing []string
	for _, k := range all {
		found := false
		for _, name := range external {
			if strings.EqualFold(name, string(k)) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("kinds missing from external enumeration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// VerifyScheme runs Verify against the kinds registered by the chaos-mesh API.
func VerifyScheme() error {
	return errors.Wrap(Verify(registeredKinds()), "verify chaos-mesh scheme")
}
