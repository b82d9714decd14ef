package ui

import (
	"sync"
	"time"
)

// ProgressTracker keeps the progress of the current stage and the time
// each finished stage took. It is safe for concurrent use.
type ProgressTracker struct {
	mu          sync.RWMutex
	stage       Stage
	current     int
	total       int
	currentFile string
	started     time.Time
	stageStart  time.Time
	timings     StageTimings
	errors      int
	warnings    int

	// ETA smoothing
	lastETA time.Duration

	lastCurrent   int
	lastSpeedCalc time.Time
	speed         float64
	peakSpeed     float64
}

// ProgressStats is a snapshot of the tracker.
type ProgressStats struct {
	Stage       Stage
	Current     int
	Total       int
	Progress    float64
	ETA         time.Duration
	CurrentFile string
	ErrorCount  int
	WarnCount   int
	Speed       float64 // items per second
	PeakSpeed   float64
}

// NewProgressTracker creates a tracker positioned at StageExtract.
func NewProgressTracker() *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		stage:         StageExtract,
		started:       now,
		stageStart:    now,
		lastSpeedCalc: now,
	}
}

// SetStage finishes the current stage and starts another.
func (p *ProgressTracker) SetStage(stage Stage, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.addTiming(p.stage, now.Sub(p.stageStart))

	p.stage = stage
	p.total = total
	p.current = 0
	p.currentFile = ""
	p.stageStart = now
	p.lastETA = 0
	p.lastCurrent = 0
	p.lastSpeedCalc = now
	p.speed = 0
	p.peakSpeed = 0
}

func (p *ProgressTracker) addTiming(stage Stage, d time.Duration) {
	switch stage {
	case StageExtract:
		p.timings.Extract += d
	case StageDictionary:
		p.timings.Dictionary += d
	case StageEncode:
		p.timings.Encode += d
	case StageTranspose:
		p.timings.Transpose += d
	}
}

// Update records progress within the current stage.
func (p *ProgressTracker) Update(current, total int, file string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if total > 0 {
		p.total = total
	}
	if file != "" {
		p.currentFile = file
	}

	// Speed is sampled at most twice a second.
	now := time.Now()
	elapsed := now.Sub(p.lastSpeedCalc)
	if elapsed < 500*time.Millisecond {
		return
	}
	if delta := current - p.lastCurrent; delta > 0 {
		p.speed = float64(delta) / elapsed.Seconds()
		p.peakSpeed = max(p.peakSpeed, p.speed)
	}
	p.lastCurrent = current
	p.lastSpeedCalc = now
}

// AddError counts an error or warning.
func (p *ProgressTracker) AddError(event ErrorEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.IsWarn {
		p.warnings++
	} else {
		p.errors++
	}
}

// Timings returns the durations of the stages finished so far.
func (p *ProgressTracker) Timings() StageTimings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.timings
}

// Elapsed returns time since tracker creation.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.started)
}

// Stats returns a snapshot. It takes the write lock because the ETA is
// smoothed against the previous estimate.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress := 0.0
	if p.total > 0 {
		progress = min(float64(p.current)/float64(p.total), 1.0)
	}

	return ProgressStats{
		Stage:       p.stage,
		Current:     p.current,
		Total:       p.total,
		Progress:    progress,
		ETA:         p.calculateETA(),
		CurrentFile: p.currentFile,
		ErrorCount:  p.errors,
		WarnCount:   p.warnings,
		Speed:       p.speed,
		PeakSpeed:   p.peakSpeed,
	}
}

// etaSmoothingFactor weights a new estimate against the previous one.
const etaSmoothingFactor = 0.3

// calculateETA must be called with the lock held.
func (p *ProgressTracker) calculateETA() time.Duration {
	if p.current == 0 || p.total == 0 {
		return 0
	}
	progress := float64(p.current) / float64(p.total)
	if progress >= 1.0 {
		return 0
	}

	elapsed := time.Since(p.stageStart)
	remaining := time.Duration(float64(elapsed)/progress) - elapsed
	if remaining < 0 {
		return 0
	}
	if p.lastETA == 0 {
		p.lastETA = remaining
		return remaining
	}
	p.lastETA = time.Duration(etaSmoothingFactor*float64(remaining) + (1-etaSmoothingFactor)*float64(p.lastETA))
	return p.lastETA
}
