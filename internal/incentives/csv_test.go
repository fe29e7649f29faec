package incentives

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCostsCSV(t *testing.T) {
	input := strings.Join([]string{
		"matricula;garantia;gastos_360",
		"1234BCD;350,50;120",
		"",
		"5678JKL;0;0",
	}, "\n")

	rows, err := ParseCostsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1234BCD", rows[0].Matricula)
	require.NotNil(t, rows[0].Garantia)
	assert.True(t, rows[0].Garantia.Equal(dec("350.5")))
	require.NotNil(t, rows[0].Gastos360)
	assert.True(t, rows[0].Gastos360.Equal(dec("120")))

	require.NotNil(t, rows[1].Garantia)
	assert.True(t, rows[1].Garantia.IsZero())
}

func TestParseCostsCSVAnyColumnOrder(t *testing.T) {
	input := "gastos_360;matricula;garantia\n80;9999zzz;15,25\n"

	rows, err := ParseCostsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "9999ZZZ", rows[0].Matricula)
	assert.True(t, rows[0].Garantia.Equal(dec("15.25")))
	assert.True(t, rows[0].Gastos360.Equal(dec("80")))
}

func TestParseCostsCSVBadNumberKeepsNil(t *testing.T) {
	input := "matricula;garantia;gastos_360\n1234BCD;abc;50\n"

	rows, err := ParseCostsCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Garantia)
	require.NotNil(t, rows[0].Gastos360)
}

func TestParseCostsCSVMissingColumns(t *testing.T) {
	_, err := ParseCostsCSV(strings.NewReader("matricula;garantia\n1234BCD;10\n"))
	assert.Error(t, err)

	_, err = ParseCostsCSV(strings.NewReader("   \n"))
	assert.Error(t, err)
}
