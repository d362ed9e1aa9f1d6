package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"iPhone 15 Pro", "iphone15pro"},
		{"  Galaxy-S24!  ", "galaxys24"},
		{"café", "caf"},
		{"***", ""},
		{"ABC123", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestBrandKey(t *testing.T) {
	assert.Equal(t, BrandKey("Apple"), BrandKey(" APPLE "))
	assert.Equal(t, BrandKey("apple"), BrandKey("ApPlE"))
	assert.NotEqual(t, BrandKey("Apple"), BrandKey("Samsung"))
}

func TestAttributes_Equal(t *testing.T) {
	base := Attributes{"Color": "Black", "Storage": "128GB"}

	t.Run("same content matches", func(t *testing.T) {
		assert.True(t, base.Equal(Attributes{"Storage": "128GB", "Color": "Black"}))
	})

	t.Run("different value", func(t *testing.T) {
		assert.False(t, base.Equal(Attributes{"Color": "White", "Storage": "128GB"}))
	})

	t.Run("extra key never matches", func(t *testing.T) {
		assert.False(t, base.Equal(Attributes{"Color": "Black", "Storage": "128GB", "RAM": "8GB"}))
	})

	t.Run("missing key never matches", func(t *testing.T) {
		assert.False(t, base.Equal(Attributes{"Color": "Black"}))
	})

	t.Run("values are case sensitive", func(t *testing.T) {
		assert.False(t, base.Equal(Attributes{"Color": "black", "Storage": "128GB"}))
	})

	t.Run("nil equals empty", func(t *testing.T) {
		assert.True(t, Attributes(nil).Equal(Attributes{}))
	})
}

func TestAttributes_Key(t *testing.T) {
	a := Attributes{"b": "2", "a": "1"}
	assert.Equal(t, "a=1;b=2", a.Key())

	// separators inside values must not collide with real pairs
	tricky := Attributes{"a": "1;b=2"}
	assert.NotEqual(t, a.Key(), tricky.Key())
}

func TestAttributes_Copy(t *testing.T) {
	a := Attributes{"Color": "Black"}
	c := a.Copy()
	c["Color"] = "White"
	assert.Equal(t, "Black", a["Color"])
	assert.Nil(t, Attributes(nil).Copy())
}
