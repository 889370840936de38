package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type code string

func TestJoinCodes(t *testing.T) {
	assert.Equal(t, "JPY,EUR", JoinCodes([]code{"JPY", "EUR"}))
	assert.Equal(t, "USD", JoinCodes([]string{"USD"}))
	assert.Equal(t, "", JoinCodes([]string{}))
}

func TestSplitCodes(t *testing.T) {
	assert.Equal(t, []string{"JPY", "EUR"}, SplitCodes("JPY,EUR"))
	assert.Equal(t, []string{"JPY", "EUR"}, SplitCodes(" JPY , ,EUR,"))
	assert.Empty(t, SplitCodes(""))
}
