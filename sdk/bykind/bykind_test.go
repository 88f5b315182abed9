package bykind

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/track87/chaos-mesh-archive/sdk/kind"
)

func newResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(strings.ToUpper, opts...)
	require.NoError(t, err)
	return r
}

func TestIconForEveryKind(t *testing.T) {
	r := newResolver(t)
	assets := map[string]bool{}
	for _, k := range kind.All() {
		icon, ok := r.Icon(k)
		require.True(t, ok, k)
		assert.True(t, icon.Present())
		assert.Equal(t, Large, icon.Size, "default size")
		assert.Equal(t, k, icon.Kind)
		assert.False(t, assets[icon.Asset], "asset %s reused", icon.Asset)
		assets[icon.Asset] = true
	}
}

func TestIconSizeDoesNotChangeIdentity(t *testing.T) {
	r := newResolver(t)
	for _, k := range kind.All() {
		small, ok := r.Icon(k, Small)
		require.True(t, ok)
		large, ok := r.Icon(k, Large)
		require.True(t, ok)

		assert.Equal(t, Small, small.Size)
		assert.Equal(t, Large, large.Size)
		assert.Equal(t, large, small.Resize(Large))
	}
}

func TestEntryForEveryKind(t *testing.T) {
	r := newResolver(t)
	cases := []struct {
		kind  kind.Kind
		asset string
		key   string
	}{
		{kind.PodChaos, "images/chaos/pod.svg", "newE.target.pod.title"},
		{kind.NetworkChaos, "images/chaos/network.svg", "newE.target.network.title"},
		{kind.IoChaos, "images/chaos/io.svg", "newE.target.io.title"},
		{kind.KernelChaos, "images/chaos/kernel.svg", "newE.target.kernel.title"},
		{kind.TimeChaos, "images/chaos/time.svg", "newE.target.time.title"},
		{kind.StressChaos, "images/chaos/stress.svg", "newE.target.stress.title"},
		{kind.DNSChaos, "images/chaos/dns.svg", "newE.target.dns.title"},
		{kind.AwsChaos, "images/chaos/aws.svg", "newE.target.aws.title"},
		{kind.GcpChaos, "images/chaos/gcp.svg", "newE.target.gcp.title"},
	}
	require.Len(t, cases, len(kind.All()))

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			icon, ok := r.Icon(tc.kind)
			require.True(t, ok)
			assert.Equal(t, tc.asset, icon.Asset)

			l, ok := r.Label(tc.kind)
			require.True(t, ok)
			assert.Equal(t, tc.key, l.Key)
		})
	}
}

func TestIconSizeNormalized(t *testing.T) {
	r := newResolver(t)

	icon, ok := r.Icon(kind.PodChaos, "Small")
	require.True(t, ok)
	assert.Equal(t, Small, icon.Size)

	icon, ok = r.Icon(kind.PodChaos, "huge")
	require.True(t, ok)
	assert.Equal(t, DefaultSize, icon.Size)
	assert.Equal(t, "images/chaos/pod.svg", icon.Asset)

	icon, ok = r.Icon(kind.PodChaos, "")
	require.True(t, ok)
	assert.Equal(t, Large, icon.Size)

	assert.Equal(t, Small, icon.Resize("SMALL").Size)
	assert.Equal(t, Large, icon.Resize("tiny").Size)
}

func TestTextUsesTranslator(t *testing.T) {
	r := newResolver(t)
	text, ok := r.Text(kind.GcpChaos)
	require.True(t, ok)
	assert.Equal(t, "NEWE.TARGET.GCP.TITLE", text)

	plain, err := NewResolver(nil)
	require.NoError(t, err)
	text, ok = plain.Text(kind.AwsChaos)
	require.True(t, ok)
	assert.Equal(t, "newE.target.aws.title", text)
}

func TestUnknownKindIsAbsent(t *testing.T) {
	r := newResolver(t)

	icon, ok := r.Icon("JVMChaos", Small)
	assert.False(t, ok)
	assert.False(t, icon.Present())
	assert.Equal(t, Small, icon.Size, "container still produced")

	l, ok := r.Label("JVMChaos")
	assert.False(t, ok)
	assert.Empty(t, l.Key)

	_, ok = r.Text("JVMChaos")
	assert.False(t, ok)
}

func TestIdempotent(t *testing.T) {
	r := newResolver(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, k := range kind.All() {
				a, _ := r.Icon(k, Small)
				b, _ := r.Icon(k, Small)
				assert.Equal(t, a, b)
				la, _ := r.Label(k)
				lb, _ := r.Label(k)
				assert.Equal(t, la, lb)
			}
		}()
	}
	wg.Wait()
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(defaultEntries))

	err := Check(map[kind.Kind]Entry{
		kind.PodChaos:     {Asset: "pod.svg"},
		kind.NetworkChaos: {Key: "net"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PodChaos: no translation key")
	assert.Contains(t, err.Error(), "NetworkChaos: no icon asset")
	assert.Contains(t, err.Error(), "GcpChaos: no entry")

	assert.Panics(t, func() { MustCheck(nil) })
}

func TestWithEntries(t *testing.T) {
	r := newResolver(t, WithEntries(map[kind.Kind]Entry{
		kind.PodChaos: {Asset: "theme/pod.svg", Key: "newE.target.pod.title"},
		"JVMChaos":    {Asset: "theme/jvm.svg", Key: "newE.target.jvm.title"},
	}))

	icon, ok := r.Icon(kind.PodChaos)
	require.True(t, ok)
	assert.Equal(t, "theme/pod.svg", icon.Asset)

	icon, ok = r.Icon("JVMChaos")
	require.True(t, ok)
	assert.Equal(t, "theme/jvm.svg", icon.Asset)

	entries := r.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, kind.PodChaos, entries[0].Kind)
	assert.Equal(t, kind.Kind("JVMChaos"), entries[9].Kind)

	_, err := NewResolver(nil, WithEntries(map[kind.Kind]Entry{kind.TimeChaos: {Asset: "x.svg"}}))
	assert.Error(t, err)
}

func TestOverrideDoesNotLeak(t *testing.T) {
	newResolver(t, WithEntries(map[kind.Kind]Entry{
		kind.PodChaos: {Asset: "theme/pod.svg", Key: "k"},
	}))
	r := newResolver(t)
	icon, _ := r.Icon(kind.PodChaos)
	assert.Equal(t, "images/chaos/pod.svg", icon.Asset)
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize("")
	require.NoError(t, err)
	assert.Equal(t, Large, s)

	s, err = ParseSize("Small")
	require.NoError(t, err)
	assert.Equal(t, Small, s)

	_, err = ParseSize("medium")
	assert.Error(t, err)
}
