package driver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunPrintsToOut(t *testing.T) {
	var out, errOut bytes.Buffer
	d := &Driver{Out: &out, Err: &errOut}

	ok := d.Run(`let s = {1,2}; print 1 in s;`)

	assert.True(t, ok)
	assert.Equal(t, "True :: BoolType\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestRunReportsSyntaxError(t *testing.T) {
	var out, errOut bytes.Buffer
	d := &Driver{Out: &out, Err: &errOut}

	ok := d.Run(`let = 5;`)

	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "Syntax errors were found")
	assert.Empty(t, out.String())
}

func TestRunReportsTypeError(t *testing.T) {
	var out, errOut bytes.Buffer
	d := &Driver{Out: &out, Err: &errOut}

	ok := d.Run(`let x = 1 & "s";`)

	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "Type error occurred")
}

func TestRunReportsExecutionErrorOnLoadFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	d := &Driver{Out: &out, Err: &errOut}

	ok := d.Run(`print load "/no/such/graph.dot";`)

	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "Error occurred during execution")
}

func TestRunFileOpenFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	d := &Driver{Out: &out, Err: &errOut}

	_, err := d.RunFile("/no/such/program.fal")

	assert.Error(t, err)
}
