// Package bykind maps experiment kinds to their dashboard icon and label.
package bykind

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

var log = logf.Log.WithName("bykind")

// Size selects one of the two icon sizes.
type Size string

const (
	Small Size = "small"
	Large Size = "large"

	DefaultSize = Large
)

// ParseSize accepts "small" or "large"; the empty string yields DefaultSize.
func ParseSize(s string) (Size, error) {
	switch Size(strings.ToLower(s)) {
	case "":
		return DefaultSize, nil
	case Small:
		return Small, nil
	case Large:
		return Large, nil
	}
	return "", errors.Errorf("unknown icon size %q", s)
}

func normalizeSize(size Size) Size {
	s, err := ParseSize(string(size))
	if err != nil {
		log.V(1).Info("unknown icon size, using default", "size", size)
		return DefaultSize
	}
	return s
}

// Entry is the presentation metadata of one kind.
type Entry struct {
	Asset string `json:"asset" yaml:"asset"`
	Key   string `json:"key" yaml:"key"`
}

var defaultEntries = map[kind.Kind]Entry{
	kind.PodChaos:     {Asset: "images/chaos/pod.svg", Key: "newE.target.pod.title"},
	kind.NetworkChaos: {Asset: "images/chaos/network.svg", Key: "newE.target.network.title"},
	kind.IoChaos:      {Asset: "images/chaos/io.svg", Key: "newE.target.io.title"},
	kind.KernelChaos:  {Asset: "images/chaos/kernel.svg", Key: "newE.target.kernel.title"},
	kind.TimeChaos:    {Asset: "images/chaos/time.svg", Key: "newE.target.time.title"},
	kind.StressChaos:  {Asset: "images/chaos/stress.svg", Key: "newE.target.stress.title"},
	kind.DNSChaos:     {Asset: "images/chaos/dns.svg", Key: "newE.target.dns.title"},
	kind.AwsChaos:     {Asset: "images/chaos/aws.svg", Key: "newE.target.aws.title"},
	kind.GcpChaos:     {Asset: "images/chaos/gcp.svg", Key: "newE.target.gcp.title"},
}

func init() {
	MustCheck(defaultEntries)
}

// Check reports every kind that has no entry, or whose entry lacks an asset or key.
func Check(entries map[kind.Kind]Entry) error {
	var problems []string
	for _, k := range kind.All() {
		e, ok := entries[k]
		switch {
		case !ok:
			problems = append(problems, string(k)+": no entry")
		case e.Asset == "":
			problems = append(problems, string(k)+": no icon asset")
		case e.Key == "":
			problems = append(problems, string(k)+": no translation key")
		}
	}
	if len(problems) > 0 {
		return errors.Errorf("incomplete kind table: %s", strings.Join(problems, "; "))
	}
	return nil
}

// MustCheck panics if Check fails.
func MustCheck(entries map[kind.Kind]Entry) {
	if err := Check(entries); err != nil {
		panic(err)
	}
}

// Icon is an icon asset wrapped in a sized container. A zero Asset means the
// kind had no mapping; the container is still produced.
type Icon struct {
	Kind  kind.Kind `json:"kind"`
	Asset string    `json:"asset,omitempty"`
	Size  Size      `json:"size"`
}

// Present reports whether the icon carries an asset.
func (i Icon) Present() bool {
	return i.Asset != ""
}

// Resize returns the same icon in another container size.
func (i Icon) Resize(size Size) Icon {
	i.Size = normalizeSize(size)
	return i
}

// Translator resolves a translation key for the active locale.
type Translator func(key string) string

// Label is a translatable unit; the text is produced on Resolve.
type Label struct {
	Key string `json:"key"`
}

// Resolve translates the label with t. A nil translator returns the key.
func (l Label) Resolve(t Translator) string {
	if t == nil {
		return l.Key
	}
	return t(l.Key)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEntries overrides table entries. The merged table must still be complete.
func WithEntries(entries map[kind.Kind]Entry) Option {
	return func(r *Resolver) {
		for k, e := range entries {
			r.entries[k] = e
		}
	}
}

// Resolver looks up icons and labels. It is immutable after construction and
// safe for concurrent use.
type Resolver struct {
	entries   map[kind.Kind]Entry
	translate Translator
}

// NewResolver returns a resolver over the default table. t may be nil, in
// which case Text returns raw translation keys.
func NewResolver(t Translator, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		entries:   make(map[kind.Kind]Entry, len(defaultEntries)),
		translate: t,
	}
	for k, e := range defaultEntries {
		r.entries[k] = e
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := Check(r.entries); err != nil {
		return nil, err
	}
	return r, nil
}

// Icon returns the icon of k wrapped at the requested size. Sizes outside
// small and large fall back to DefaultSize. ok is false when k has no mapping.
func (r *Resolver) Icon(k kind.Kind, size ...Size) (Icon, bool) {
	s := DefaultSize
	if len(size) > 0 {
		s = normalizeSize(size[0])
	}
	icon := Icon{Kind: k, Size: s}
	e, ok := r.entries[k]
	if !ok {
		log.V(1).Info("no icon for kind", "kind", k)
		return icon, false
	}
	icon.Asset = e.Asset
	return icon, true
}

// Label returns the deferred label of k. ok is false when k has no mapping.
func (r *Resolver) Label(k kind.Kind) (Label, bool) {
	e, ok := r.entries[k]
	if !ok {
		log.V(1).Info("no label for kind", "kind", k)
		return Label{}, false
	}
	return Label{Key: e.Key}, true
}

// Text resolves the label of k with the resolver's translator.
func (r *Resolver) Text(k kind.Kind) (string, bool) {
	l, ok := r.Label(k)
	if !ok {
		return "", false
	}
	return l.Resolve(r.translate), true
}

// Entries returns the table sorted in kind.All order, followed by any extra
// kinds in name order.
func (r *Resolver) Entries() []KindEntry {
	out := make([]KindEntry, 0, len(r.entries))
	for _, k := range kind.All() {
		out = append(out, KindEntry{Kind: k, Entry: r.entries[k]})
	}
	var extra []kind.Kind
	for k := range r.entries {
		if !k.Known() {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, k := range extra {
		out = append(out, KindEntry{Kind: k, Entry: r.entries[k]})
	}
	return out
}

// KindEntry pairs a kind with its table entry.
type KindEntry struct {
	Kind kind.Kind `json:"kind"`
	Entry
}
