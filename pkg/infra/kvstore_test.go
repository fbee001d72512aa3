package infra

import (
	"testing"
	"time"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecsRoundTripBytes(t *testing.T) {
	for _, ct := range []enum.CodecType{enum.CodecGob, enum.CodecJSON, enum.CodecRaw} {
		t.Run(string(ct), func(t *testing.T) {
			codec := CodecFor(ct)
			data, err := codec.Marshal([]byte("Hello"))
			require.NoError(t, err)

			var out []byte
			require.NoError(t, codec.Unmarshal(data, &out))
			assert.Equal(t, []byte("Hello"), out)
		})
	}
}

func TestRawCodecRejectsNonBytes(t *testing.T) {
	_, err := Raw.Marshal("text")
	assert.Error(t, err)

	var s string
	assert.Error(t, Raw.Unmarshal([]byte("x"), &s))
}

func TestStoreInfo(t *testing.T) {
	now := time.Now()
	info := &StoreInfo{
		Entries: []EntryInfo{
			{Key: "a/b.txt", Size: 5, ModifiedAt: now},
			{Key: "c", Size: 7},
		},
	}
	assert.Equal(t, int64(12), info.TotalSize())

	e, ok := info.Entry("a/b.txt")
	require.True(t, ok)
	assert.Equal(t, now, e.ModifiedAt)

	_, ok = info.Entry("missing")
	assert.False(t, ok)
}
