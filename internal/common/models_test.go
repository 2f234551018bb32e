package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList{"TX", "PR"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["TX","PR"]`, v)

	v, err = StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, `[]`, v, "nil lists serialize as empty, not null")
}

func TestStringListScan(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan(`["TX","PR"]`))
	assert.Equal(t, StringList{"TX", "PR"}, l)

	require.NoError(t, l.Scan([]byte(`["GU"]`)))
	assert.Equal(t, StringList{"GU"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
}
