package nodes

import (
	"testing"

	"github.com/cuemby/ovncontroller/pkg/translate"
	"github.com/stretchr/testify/require"
)

func TestLflowCacheGetPut(t *testing.T) {
	c := NewLflowCache(0, 0, 50)
	entries := []translate.FlowEntry{{Table: 1, Match: "m1", Actions: "a1"}}
	c.Put("fp1", entries)

	got, ok := c.Get("fp1")
	require.True(t, ok)
	require.Equal(t, entries, got)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestLflowCacheEvict(t *testing.T) {
	c := NewLflowCache(0, 0, 50)
	c.Put("fp1", []translate.FlowEntry{{Table: 1, Match: "m", Actions: "a"}})
	require.Equal(t, 1, c.Len())

	c.Evict("fp1")
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.SizeBytes())
}

func TestLflowCacheTrimsToWatermarkOnEntryLimit(t *testing.T) {
	c := NewLflowCache(4, 0, 50)
	for i := 0; i < 4; i++ {
		c.Put(string(rune('a'+i)), []translate.FlowEntry{{Table: uint8(i), Match: "m", Actions: "a"}})
	}
	require.Equal(t, 4, c.Len())

	// Crossing the limit trims down to the watermark (50% of 4 = 2), not
	// just back under the limit.
	c.Put("e", []translate.FlowEntry{{Table: 5, Match: "m", Actions: "a"}})
	require.LessOrEqual(t, c.Len(), 2)

	// The most recently inserted entry must survive the trim.
	_, ok := c.Get("e")
	require.True(t, ok)
}

func TestLflowCacheTrimsOnByteLimit(t *testing.T) {
	// fp1's entry is large enough on its own to push the cache over the
	// limit; fp2's is small enough to fit under the post-trim watermark.
	large := []translate.FlowEntry{{Table: 1, Match: string(make([]byte, 60)), Actions: string(make([]byte, 61))}}
	small := []translate.FlowEntry{{Table: 2, Match: string(make([]byte, 10)), Actions: string(make([]byte, 11))}}

	c := NewLflowCache(0, 150, 50)
	c.Put("fp1", large)
	require.Equal(t, 1, c.Len())

	c.Put("fp2", small)
	require.LessOrEqual(t, c.SizeBytes(), 150)

	// The oldest, largest entry is evicted first; the newer small one survives.
	_, ok := c.Get("fp2")
	require.True(t, ok)
	_, ok = c.Get("fp1")
	require.False(t, ok)
}

func TestLflowCacheFlush(t *testing.T) {
	c := NewLflowCache(0, 0, 50)
	c.Put("fp1", []translate.FlowEntry{{Table: 1, Match: "m", Actions: "a"}})
	c.Flush()
	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.SizeBytes())
}
