package cartkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, size := range Sizes {
		for _, sugar := range Levels {
			for _, ice := range Levels {
				key := Encode(42, size, sugar, ice)
				sel, err := Decode(key)
				require.NoError(t, err, "key %q", key)
				assert.Equal(t, Selection{BeverageID: 42, Size: size, Sugar: sugar, Ice: ice}, sel)
			}
		}
	}
}

func TestEncodeNormalizesUnknownOptions(t *testing.T) {
	key := Encode(7, "venti", "extra", "")
	sel, err := Decode(key)
	require.NoError(t, err)
	assert.Equal(t, SizeRegular, sel.Size)
	assert.Equal(t, LevelDefault, sel.Sugar)
	assert.Equal(t, LevelDefault, sel.Ice)
	assert.Equal(t, int64(7), sel.BeverageID)
}

func TestEncodeIsDeterministic(t *testing.T) {
	assert.Equal(t, Encode(3, "large", "less", "more"), Encode(3, "large", "less", "more"))
	assert.Equal(t, "3:large:less:more", Encode(3, "large", "less", "more"))
}

func TestDecodeRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{
		"",
		"1",
		"1:large",
		"1:large:less",
		"1:large:less:more:extra",
		"x:large:less:more",
		"-1:large:less:more",
		"0:regular:default:default",
		"1:venti:less:more",
		"1:large:sweet:more",
		"1:large:less:none",
	} {
		_, err := Decode(key)
		assert.Error(t, err, "key %q", key)
	}
}
