package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	testCases := []struct {
		desc      string
		high, low uint8
		want      uint16
	}{
		{desc: "distinct halves", high: 0x12, low: 0x34, want: 0x1234},
		{desc: "high byte lands in the upper half", high: 0xFF, low: 0x00, want: 0xFF00},
		{desc: "low byte lands in the lower half", high: 0x00, low: 0xFF, want: 0x00FF},
		{desc: "zero", high: 0x00, low: 0x00, want: 0x0000},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, Combine(tC.high, tC.low))
		})
	}
}

func TestSplitRoundTrip(t *testing.T) {
	values := []uint16{0x0000, 0x0001, 0x00FF, 0x0100, 0xABCD, 0xFFFF}

	for _, v := range values {
		assert.Equal(t, v, Combine(High(v), Low(v)), "value 0x%04X", v)
	}
}

func TestLowHigh(t *testing.T) {
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
}

func TestIsSet(t *testing.T) {
	testCases := []struct {
		desc  string
		index uint8
		value uint8
		want  bool
	}{
		{desc: "lowest bit set", index: 0, value: 0x01, want: true},
		{desc: "lowest bit clear", index: 0, value: 0xFE, want: false},
		{desc: "highest bit set", index: 7, value: 0x80, want: true},
		{desc: "middle bit clear", index: 4, value: 0xEF, want: false},
		{desc: "index past the byte", index: 8, value: 0xFF, want: false},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, IsSet(tC.index, tC.value))
		})
	}
}

func TestIsSet16(t *testing.T) {
	assert.True(t, IsSet16(9, 1<<9))
	assert.False(t, IsSet16(9, 1<<8))
	assert.True(t, IsSet16(15, 0x8000))
}

func TestSetReset(t *testing.T) {
	var value uint8

	for i := uint8(0); i < 8; i++ {
		value = Set(i, value)
		assert.True(t, IsSet(i, value))
	}
	assert.Equal(t, uint8(0xFF), value)

	for i := uint8(0); i < 8; i++ {
		value = Reset(i, value)
		assert.False(t, IsSet(i, value))
	}
	assert.Zero(t, value)
}

func TestSetResetLeaveOtherBitsAlone(t *testing.T) {
	assert.Equal(t, uint8(0b1010_1011), Set(0, 0b1010_1010))
	assert.Equal(t, uint8(0b1010_1010), Set(1, 0b1010_1010), "setting a set bit is a no-op")
	assert.Equal(t, uint8(0b1010_1000), Reset(1, 0b1010_1010))
	assert.Equal(t, uint8(0b1010_1010), Reset(0, 0b1010_1010), "resetting a clear bit is a no-op")
}

func TestGetBitValue(t *testing.T) {
	assert.Equal(t, uint8(1), GetBitValue(3, 0b0000_1000))
	assert.Equal(t, uint8(0), GetBitValue(3, 0b1111_0111))
}
