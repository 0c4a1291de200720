package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCmd_SQLPorStdout(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"seed", "--orders", "4", "--batches", "2", "--seed", "3"})

	require.NoError(t, root.Execute())
	assert.Equal(t, 4, strings.Count(out.String(), "INSERT INTO loading_orders"))
	assert.Equal(t, 2, strings.Count(out.String(), "INSERT INTO stock_batches"))
}

func TestParseQuantity(t *testing.T) {
	q, err := parseQuantity("")
	require.NoError(t, err)
	assert.Nil(t, q)

	q, err = parseQuantity("380.25")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "380.25", q.String())

	_, err = parseQuantity("mucho")
	assert.Error(t, err)
}

func TestResolveCmd_RequiereArgumento(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"resolve"})
	assert.Error(t, root.Execute())
}
