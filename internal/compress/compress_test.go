package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	compressible := bytes.Repeat([]byte("row-major float64 rows "), 512)
	random := make([]byte, 256)
	for i := range random {
		random[i] = byte(i*7 + i*i)
	}

	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			for _, data := range [][]byte{nil, []byte("x"), compressible, random} {
				block, err := Encode(data, typ)
				require.NoError(t, err)

				got, err := Decode(block, typ)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(got))
				if len(data) > 0 {
					assert.Equal(t, data, got)
				}
			}
		})
	}
}

func TestEncode_ShrinksCompressible(t *testing.T) {
	data := bytes.Repeat([]byte{0}, 64*1024)

	for _, typ := range []Type{LZ4, ZSTD} {
		block, err := Encode(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data)/4, typ.String())
	}
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, LZ4)
	assert.ErrorIs(t, err, ErrCorruptBlock)

	block, err := Encode(bytes.Repeat([]byte("abc"), 1000), ZSTD)
	require.NoError(t, err)

	_, err = Decode(block[:len(block)-1], ZSTD)
	assert.ErrorIs(t, err, ErrCorruptBlock)
}

func TestType(t *testing.T) {
	assert.True(t, ZSTD.Valid())
	assert.False(t, Type(9).Valid())
	assert.Equal(t, "compress(9)", Type(9).String())

	_, err := Encode([]byte("x"), Type(9))
	assert.Error(t, err)
}
