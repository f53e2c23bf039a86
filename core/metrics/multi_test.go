package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	recs []StepRecord
	err  error
}

func (r *recordingSink) RecordStep(rec StepRecord) error {
	if r.err != nil {
		return r.err
	}
	r.recs = append(r.recs, rec)
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	err := m.RecordStep(StepRecord{Step: 1, PowerInW: 5e5})
	assert.NoError(t, err)
	assert.Len(t, a.recs, 1)
	assert.Len(t, b.recs, 1)
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingSink{err: boom}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	err := m.RecordStep(StepRecord{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, b.recs)
}

func TestNewSinkDefaultsToNop(t *testing.T) {
	s, err := NewSink(nil)
	assert.NoError(t, err)
	assert.IsType(t, NopSink{}, s)
}
