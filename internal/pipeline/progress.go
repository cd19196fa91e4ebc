package pipeline

import (
	"sync"
)

// Stage is one of the four steps of an export run
type Stage int

const (
	StageIndex Stage = iota + 1
	StageDetails
	StageQuality
	StageExport
)

// StageCount is the number of stages reported to the operator
const StageCount = 4

// String returns the operator-facing stage title
func (s Stage) String() string {
	switch s {
	case StageIndex:
		return "Загрузка всех организаций"
	case StageDetails:
		return "Загрузка информации об организациях"
	case StageQuality:
		return "Загрузка оценок качества организаций"
	case StageExport:
		return "Формирование Excel файла"
	}
	return "unknown"
}

// Progress is reported when a stage starts and after every detail request.
// Total is zero for stages without per-item progress.
type Progress struct {
	Stage   Stage
	Current int
	Total   int
}

// ProgressFunc receives progress updates; calls never overlap
type ProgressFunc func(Progress)

// progressTracker serializes detail progress coming from pool workers
type progressTracker struct {
	mu      sync.Mutex
	stage   Stage
	total   int
	current int
	report  ProgressFunc
}

func newProgressTracker(stage Stage, total int, report ProgressFunc) *progressTracker {
	return &progressTracker{stage: stage, total: total, report: report}
}

// Increment marks one more item as done
func (p *progressTracker) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.emit()
}

func (p *progressTracker) emit() {
	if p.report != nil {
		p.report(Progress{Stage: p.stage, Current: p.current, Total: p.total})
	}
}
