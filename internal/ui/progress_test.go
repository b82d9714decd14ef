package ui

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_StartsAtExtract(t *testing.T) {
	p := NewProgressTracker()

	stats := p.Stats()

	assert.Equal(t, StageExtract, stats.Stage)
	assert.Zero(t, stats.Progress)
	assert.Zero(t, stats.ETA)
}

func TestProgressTracker_Progress(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           float64
	}{
		{"unknown total", 5, 0, 0},
		{"quarter", 25, 100, 0.25},
		{"done", 100, 100, 1},
		{"overshoot is capped", 150, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgressTracker()
			p.SetStage(StageEncode, tt.total)

			p.Update(tt.current, 0, "")

			assert.InDelta(t, tt.want, p.Stats().Progress, 1e-9)
		})
	}
}

func TestProgressTracker_UpdateKeepsFileAndTotal(t *testing.T) {
	// Given: a stage with a known total
	p := NewProgressTracker()
	p.SetStage(StageExtract, 10)
	p.Update(1, 0, "a.txt")

	// When: a later update has no file and a new total
	p.Update(2, 20, "")

	// Then: the file is kept and the total replaced
	stats := p.Stats()
	assert.Equal(t, "a.txt", stats.CurrentFile)
	assert.Equal(t, 20, stats.Total)
}

func TestProgressTracker_SetStageResets(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageExtract, 4)
	p.Update(3, 0, "c.txt")

	p.SetStage(StageDictionary, 100)

	stats := p.Stats()
	assert.Equal(t, StageDictionary, stats.Stage)
	assert.Zero(t, stats.Current)
	assert.Equal(t, 100, stats.Total)
	assert.Empty(t, stats.CurrentFile)
}

func TestProgressTracker_Timings(t *testing.T) {
	// Given: a tracker that spends time in extract
	p := NewProgressTracker()
	time.Sleep(5 * time.Millisecond)

	// When: moving through the stages
	p.SetStage(StageDictionary, 0)
	p.SetStage(StageEncode, 0)

	// Then: extract has a duration and the current stage has none yet
	timings := p.Timings()
	assert.GreaterOrEqual(t, timings.Extract, 5*time.Millisecond)
	assert.Zero(t, timings.Encode)
	assert.GreaterOrEqual(t, p.Elapsed(), timings.Total())
}

func TestProgressTracker_ETA(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageEncode, 100)
	time.Sleep(10 * time.Millisecond)

	p.Update(50, 0, "")

	eta := p.Stats().ETA
	assert.Positive(t, eta)
	assert.Less(t, eta, time.Second)
}

func TestProgressTracker_Errors(t *testing.T) {
	p := NewProgressTracker()

	p.AddError(ErrorEvent{Err: errors.New("boom")})
	p.AddError(ErrorEvent{Err: errors.New("hmm"), IsWarn: true})
	p.AddError(ErrorEvent{Err: errors.New("hmm"), IsWarn: true})

	stats := p.Stats()
	assert.Equal(t, 1, stats.ErrorCount)
	assert.Equal(t, 2, stats.WarnCount)
}

func TestProgressTracker_Concurrent(t *testing.T) {
	p := NewProgressTracker()
	p.SetStage(StageTranspose, 1000)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Go(func() {
			for i := range 250 {
				p.Update(w*250+i, 0, "")
				_ = p.Stats()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, StageTranspose, p.Stats().Stage)
}
