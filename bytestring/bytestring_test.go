package bytestring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/abeerr"
)

func TestSmartPackRoundTrip(t *testing.T) {
	bs := New()
	bs.SmartPack([]byte("hello"))
	bs.SmartPack([]byte{})
	bs.SmartPack([]byte("world"))

	idx := 0
	chunk1, err := SmartUnpack(bs.Bytes(), &idx)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), chunk1)

	chunk2, err := SmartUnpack(bs.Bytes(), &idx)
	require.NoError(t, err)
	require.Empty(t, chunk2)

	chunk3, err := SmartUnpack(bs.Bytes(), &idx)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), chunk3)
	require.Equal(t, bs.Len(), idx)
}

func TestSmartUnpackTruncated(t *testing.T) {
	idx := 0
	_, err := SmartUnpack([]byte{0, 0}, &idx)
	require.ErrorIs(t, err, abeerr.ErrInvalidLength)

	idx = 0
	_, err = SmartUnpack([]byte{0, 0, 0, 10, 'a'}, &idx)
	require.ErrorIs(t, err, abeerr.ErrInvalidLength)
}

func TestPack16RejectsOversizedChunk(t *testing.T) {
	bs := New()
	big := make([]byte, 0x10000)
	err := bs.Pack16(big)
	require.ErrorIs(t, err, abeerr.ErrInvalidLength)
}

func TestGetSubset(t *testing.T) {
	bs := FromBytes([]byte("abcdefgh"))
	sub, err := bs.GetSubset(2, 3)
	require.NoError(t, err)
	require.Equal(t, []byte("cde"), sub)

	_, err = bs.GetSubset(6, 5)
	require.ErrorIs(t, err, abeerr.ErrInvalidLength)
}

func TestHexRoundTrip(t *testing.T) {
	bs := FromBytes([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	hexStr := bs.ToHex()
	require.Equal(t, "deadbeef", hexStr)

	decoded := New()
	require.NoError(t, decoded.FromHex(hexStr))
	require.Equal(t, bs.Bytes(), decoded.Bytes())

	require.Error(t, decoded.FromHex("not-hex"))
}
