package usecase

import "time"

func (uc *AnalysisUseCase) SetClock(now func() time.Time) {
	uc.now = now
}
