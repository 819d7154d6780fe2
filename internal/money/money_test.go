package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Run("two decimal currency", func(t *testing.T) {
		out, err := Format(1234, "USD")
		assert.NoError(t, err)
		assert.Equal(t, "$12.34", out)
	})

	t.Run("pads minor units", func(t *testing.T) {
		out, err := Format(45000, "USD")
		assert.NoError(t, err)
		assert.Equal(t, "$450.00", out)

		out, err = Format(105, "EUR")
		assert.NoError(t, err)
		assert.Equal(t, "€1.05", out)
	})

	t.Run("zero exponent currency", func(t *testing.T) {
		out, err := Format(1500, "JPY")
		assert.NoError(t, err)
		assert.Equal(t, "¥1500", out)
	})

	t.Run("three decimal currency", func(t *testing.T) {
		out, err := Format(1001, "KWD")
		assert.NoError(t, err)
		assert.Equal(t, "KD 1.001", out)
	})

	t.Run("negative amount", func(t *testing.T) {
		out, err := Format(-1234, "USD")
		assert.NoError(t, err)
		assert.Equal(t, "-$12.34", out)
	})

	t.Run("zero", func(t *testing.T) {
		out, err := Format(0, "GBP")
		assert.NoError(t, err)
		assert.Equal(t, "£0.00", out)
	})

	t.Run("case insensitive code", func(t *testing.T) {
		out, err := Format(100, "usd")
		assert.NoError(t, err)
		assert.Equal(t, "$1.00", out)
	})

	t.Run("unknown currency fails", func(t *testing.T) {
		_, err := Format(100, "XXX")
		assert.ErrorIs(t, err, ErrUnknownCurrency)
	})
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("USD"))
	assert.True(t, Supported("ngn"))
	assert.False(t, Supported("ZZZ"))
}
