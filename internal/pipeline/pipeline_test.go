package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/funxy-fa/internal/diagnostics"
)

type recordingProcessor struct {
	ran *bool
	err *diagnostics.DiagnosticError
}

func (rp *recordingProcessor) Process(ctx *Context) *Context {
	*rp.ran = true
	if rp.err != nil {
		ctx.Err = rp.err
	}
	return ctx
}

func TestPipelineRunsEveryProcessorOnSuccess(t *testing.T) {
	var ranA, ranB bool
	p := New(&recordingProcessor{ran: &ranA}, &recordingProcessor{ran: &ranB})

	p.Run(NewContext("", "print 1;"))

	assert.True(t, ranA)
	assert.True(t, ranB)
}

func TestPipelineStopsAtFirstError(t *testing.T) {
	var ranA, ranB bool
	failing := &recordingProcessor{ran: &ranA, err: diagnostics.New(diagnostics.Type, "boom")}
	p := New(failing, &recordingProcessor{ran: &ranB})

	ctx := p.Run(NewContext("", "print 1;"))

	assert.True(t, ranA)
	assert.False(t, ranB)
	assert.Error(t, ctx.Err)
}
