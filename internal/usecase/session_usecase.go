package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scoutscape/internal/domain"
	apperrors "github.com/scoutscape/internal/pkg/errors"
	"github.com/scoutscape/internal/pkg/metrics"
	"github.com/scoutscape/internal/pkg/timeinput"
	"github.com/scoutscape/internal/usecase/dto"
	"go.uber.org/zap"
)

type sessionEntry struct {
	session domain.Session
	// ctx отменяется при смене поколения: запросы, начатые раньше, прерываются
	ctx      context.Context
	cancel   context.CancelFunc
	lastSeen time.Time
}

// SessionUseCase - сессии разведки в памяти процесса
type SessionUseCase struct {
	scoutingUC   *ScoutingUseCase
	conditionsUC *ConditionsUseCase
	analysisUC   *AnalysisUseCase
	logger       *zap.Logger
	ttl          time.Duration
	now          func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
}

// NewSessionUseCase создает новый SessionUseCase
func NewSessionUseCase(
	scoutingUC *ScoutingUseCase,
	conditionsUC *ConditionsUseCase,
	analysisUC *AnalysisUseCase,
	logger *zap.Logger,
	ttl time.Duration,
) *SessionUseCase {
	return &SessionUseCase{
		scoutingUC:   scoutingUC,
		conditionsUC: conditionsUC,
		analysisUC:   analysisUC,
		logger:       logger,
		ttl:          ttl,
		now:          time.Now,
		sessions:     make(map[uuid.UUID]*sessionEntry),
	}
}

// Create создает сессию без выбранной точки
func (uc *SessionUseCase) Create(req dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	radius, err := uc.scoutingUC.NormalizeRadius(req.Radius)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	ctx, cancel := context.WithCancel(context.Background())
	entry := &sessionEntry{
		session: domain.Session{
			ID:         uuid.New(),
			Radius:     radius,
			Period:     string(domain.PeriodPM),
			Visibility: domain.Visibility{},
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: now,
	}

	uc.mu.Lock()
	uc.sessions[entry.session.ID] = entry
	count := len(uc.sessions)
	resp := uc.toResponse(entry)
	uc.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	uc.logger.Debug("Session created", zap.String("session_id", entry.session.ID.String()))

	return resp, nil
}

// Get возвращает состояние сессии
func (uc *SessionUseCase) Get(id uuid.UUID) (*dto.SessionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(entry), nil
}

// SetPoint выбирает точку. Точка вне границ отклоняется, состояние сессии не меняется.
func (uc *SessionUseCase) SetPoint(id uuid.UUID, req dto.SetPointRequest) (*dto.SessionResponse, error) {
	point := domain.Point{Lat: req.Lat, Lon: req.Lon}
	if err := uc.scoutingUC.CheckPoint(point); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}

	if entry.session.Point == nil || *entry.session.Point != point {
		entry.session.Point = &point
		uc.advance(entry)
	}
	return uc.toResponse(entry), nil
}

// SetRadius меняет радиус
func (uc *SessionUseCase) SetRadius(id uuid.UUID, req dto.SetRadiusRequest) (*dto.SessionResponse, error) {
	radius, err := uc.scoutingUC.NormalizeRadius(req.Radius)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}

	if entry.session.Radius != radius {
		entry.session.Radius = radius
		uc.advance(entry)
	}
	return uc.toResponse(entry), nil
}

// SetTime сохраняет сырые поля времени; некорректный ввод помечается в ответе, но не отклоняется
func (uc *SessionUseCase) SetTime(id uuid.UUID, req dto.SetTimeRequest) (*dto.SessionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.session.Hour = req.Hour
	entry.session.Minute = req.Minute
	entry.session.Period = string(timeinput.NormalizePeriod(req.Period))
	entry.session.UpdatedAt = uc.now().UTC()
	return uc.toResponse(entry), nil
}

// SetLayer меняет видимость категории; счётчики от этого не зависят
func (uc *SessionUseCase) SetLayer(id uuid.UUID, category domain.Category, req dto.SetLayerRequest) (*dto.SessionResponse, error) {
	if !uc.scoutingUC.Catalog().Contains(category) {
		return nil, apperrors.ErrInvalidCategory
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.session.Visibility[category] = req.Visible
	entry.session.UpdatedAt = uc.now().UTC()
	return uc.toResponse(entry), nil
}

// Facilities агрегирует объекты вокруг точки сессии. Без точки - нулевые счётчики.
func (uc *SessionUseCase) Facilities(id uuid.UUID, top int) (*dto.NearbyResponse, error) {
	uc.mu.Lock()
	entry, err := uc.lookup(id)
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	var point *domain.Point
	if entry.session.Point != nil {
		p := *entry.session.Point
		point = &p
	}
	radius := entry.session.Radius
	visibility := entry.session.Visibility.Clone()
	uc.mu.Unlock()

	agg, err := uc.scoutingUC.Aggregate(point, radius, visibility)
	if err != nil {
		return nil, err
	}
	return uc.scoutingUC.BuildNearby(point, radius, agg, top), nil
}

// Conditions запрашивает погоду и трафик для точки сессии.
// Если за время запроса точка или радиус изменились, результат отбрасывается.
func (uc *SessionUseCase) Conditions(ctx context.Context, id uuid.UUID) (*dto.ConditionsResponse, error) {
	snap, err := uc.capture(id)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(snap.ctx, cancel)
	defer stop()

	resp := uc.conditionsUC.Conditions(fetchCtx, snap.point, snap.selection)

	if !uc.isCurrent(id, snap.generation) {
		metrics.StaleResultsTotal.WithLabelValues("conditions").Inc()
		uc.logger.Debug("Discarding stale conditions",
			zap.String("session_id", id.String()),
			zap.Uint64("generation", snap.generation))
		return nil, apperrors.ErrStaleResult
	}

	resp.Generation = snap.generation
	return resp, nil
}

// Analyze фиксирует снимок для текущей точки, радиуса и времени
func (uc *SessionUseCase) Analyze(ctx context.Context, id uuid.UUID) (*dto.AnalysisResponse, error) {
	snap, err := uc.capture(id)
	if err != nil {
		return nil, err
	}

	result, err := uc.analysisUC.Compose(snap.point, snap.radius, snap.selection)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	entry, err := uc.lookup(id)
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	// снимок для сменившейся точки или радиуса не сохраняется и не публикуется
	if entry.session.Generation != snap.generation {
		uc.mu.Unlock()
		metrics.StaleResultsTotal.WithLabelValues("analysis").Inc()
		uc.logger.Debug("Discarding stale analysis",
			zap.String("session_id", id.String()),
			zap.Uint64("generation", snap.generation))
		return nil, apperrors.ErrStaleResult
	}
	entry.session.LastAnalysis = result
	entry.session.UpdatedAt = uc.now().UTC()
	uc.mu.Unlock()

	uc.analysisUC.Commit(ctx, result)
	return dto.NewAnalysisResponse(result), nil
}

// EvictExpired удаляет сессии, простаивающие дольше TTL
func (uc *SessionUseCase) EvictExpired() int {
	if uc.ttl <= 0 {
		return 0
	}

	cutoff := uc.now().Add(-uc.ttl)

	uc.mu.Lock()
	evicted := 0
	for id, entry := range uc.sessions {
		if entry.lastSeen.Before(cutoff) {
			entry.cancel()
			delete(uc.sessions, id)
			evicted++
		}
	}
	count := len(uc.sessions)
	uc.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	if evicted > 0 {
		uc.logger.Info("Expired sessions evicted", zap.Int("evicted", evicted), zap.Int("active", count))
	}
	return evicted
}

// RunJanitor периодически удаляет просроченные сессии до отмены контекста
func (uc *SessionUseCase) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.EvictExpired()
		}
	}
}

// Count возвращает число активных сессий
func (uc *SessionUseCase) Count() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

type sessionSnapshot struct {
	point      domain.Point
	radius     int
	selection  *domain.TimeSelection
	generation uint64
	ctx        context.Context
}

// capture копирует входные данные для запроса; без точки - ErrNoPointSelected, неверное время - ErrInvalidTime
func (uc *SessionUseCase) capture(id uuid.UUID) (*sessionSnapshot, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, err := uc.lookup(id)
	if err != nil {
		return nil, err
	}
	if !entry.session.HasPoint() {
		return nil, apperrors.ErrNoPointSelected
	}

	sel, err := timeinput.Resolve(entry.session.Hour, entry.session.Minute, entry.session.Period)
	if err != nil {
		return nil, err
	}

	return &sessionSnapshot{
		point:      *entry.session.Point,
		radius:     entry.session.Radius,
		selection:  sel,
		generation: entry.session.Generation,
		ctx:        entry.ctx,
	}, nil
}

func (uc *SessionUseCase) isCurrent(id uuid.UUID, generation uint64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	entry, ok := uc.sessions[id]
	return ok && entry.session.Generation == generation
}

// advance начинает новое поколение: отменяет запросы старого и сбрасывает последний снимок.
// Вызывается под uc.mu.
func (uc *SessionUseCase) advance(entry *sessionEntry) {
	entry.cancel()
	entry.ctx, entry.cancel = context.WithCancel(context.Background())
	entry.session.Generation++
	entry.session.LastAnalysis = nil
	entry.session.UpdatedAt = uc.now().UTC()
}

// lookup вызывается под uc.mu и продлевает жизнь сессии
func (uc *SessionUseCase) lookup(id uuid.UUID) (*sessionEntry, error) {
	entry, ok := uc.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	entry.lastSeen = uc.now()
	return entry, nil
}

func (uc *SessionUseCase) toResponse(entry *sessionEntry) *dto.SessionResponse {
	s := entry.session

	var point *domain.Point
	if s.Point != nil {
		p := *s.Point
		point = &p
	}

	sel := timeinput.ParseClock(s.Hour, s.Minute, s.Period)

	return &dto.SessionResponse{
		ID:     s.ID,
		Point:  point,
		Radius: s.Radius,
		Time: dto.TimeResponse{
			Hour:      s.Hour,
			Minute:    s.Minute,
			Period:    s.Period,
			Selection: sel,
			Summary:   domain.TimeSummary(sel),
			Invalid:   timeinput.HasClockInput(s.Hour, s.Minute) && sel == nil,
		},
		Layers:       s.Visibility.Clone(),
		Generation:   s.Generation,
		LastAnalysis: dto.NewAnalysisResponse(s.LastAnalysis),
		UpdatedAt:    s.UpdatedAt,
	}
}
