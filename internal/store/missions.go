package store

import (
	"context"
	"math"
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// placeholderDistance stands in for a real geo lookup.
const placeholderDistance = "Calculando..."

// AddMission validates and publishes a new mission. It always starts
// available, minimum level 1, payment method defaulted to pix.
func (s *Store) AddMission(ctx context.Context, req *domain.CreateMissionRequest) (*domain.Mission, error) {
	ctx, span := tracer.Start(ctx, "Store.AddMission")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return nil, err
	}
	if req.Reward <= 0 || math.IsNaN(req.Reward) || math.IsInf(req.Reward, 0) {
		return nil, &domain.ErrValidation{Field: "reward", Message: "reward must be a positive amount"}
	}

	method := req.PaymentMethod
	switch method {
	case "":
		method = domain.PaymentPix
	case domain.PaymentPix, domain.PaymentCash, domain.PaymentCard:
	default:
		return nil, &domain.ErrValidation{Field: "paymentMethod", Message: "must be pix, cash or card"}
	}

	mission := domain.Mission{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Description:   req.Description,
		Reward:        req.Reward,
		Location:      req.Location,
		Distance:      placeholderDistance,
		Duration:      req.Duration,
		MinLevel:      1,
		PaymentMethod: method,
		Status:        domain.MissionAvailable,
	}

	// Newest first.
	s.missions = append([]domain.Mission{mission}, s.missions...)
	s.emit(missionCreatedEvent{title: mission.Title})
	s.metrics.IncrMissionEvent("created")
	s.persist(ctx)

	s.logger.Info("mission created",
		zap.String("mission_id", mission.ID),
		zap.String("title", mission.Title),
		zap.Float64("reward", mission.Reward),
	)
	return &mission, nil
}

// AcceptMission transitions an available mission to accepted, gated by
// the mission's minimum level. An anonymous session counts as level 0.
// The level-gate rejection both emits the warning notification and
// returns a typed error; the mission is left untouched.
func (s *Store) AcceptMission(ctx context.Context, id string) (*domain.Mission, error) {
	ctx, span := tracer.Start(ctx, "Store.AcceptMission")
	defer span.End()
	span.SetAttributes(attribute.String("mission.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return nil, err
	}

	idx := s.missionIndex(id)
	if idx < 0 {
		return nil, &domain.ErrNotFound{Resource: "mission", ID: id}
	}
	m := &s.missions[idx]

	level := 0
	if s.user != nil {
		level = s.user.Level
	}
	if m.MinLevel > level {
		s.emit(levelLockedEvent{required: m.MinLevel})
		s.persist(ctx)
		return nil, &domain.ErrLevelLocked{Required: m.MinLevel, Current: level}
	}

	// Status transitions are one-directional; anything past available is
	// left as is with no side effects.
	if m.Status != domain.MissionAvailable {
		out := *m
		return &out, nil
	}

	m.Status = domain.MissionAccepted
	s.emit(missionAcceptedEvent{title: m.Title})
	s.metrics.IncrMissionEvent("accepted")
	s.persist(ctx)

	s.logger.Info("mission accepted",
		zap.String("mission_id", m.ID),
		zap.Int("user_level", level),
	)
	out := *m
	return &out, nil
}

// CompleteMission finishes a mission and fires its financial and
// progression side effects exactly once: the 15% service fee is debited
// (the balance may go negative — platform debt, not an error), and with
// an active session the provider gains XP, a work-history entry and a
// notification. Calling it again on a completed mission is a no-op.
func (s *Store) CompleteMission(ctx context.Context, id string) (*domain.Mission, error) {
	ctx, span := tracer.Start(ctx, "Store.CompleteMission")
	defer span.End()
	span.SetAttributes(attribute.String("mission.id", id))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return nil, err
	}

	idx := s.missionIndex(id)
	if idx < 0 {
		return nil, &domain.ErrNotFound{Resource: "mission", ID: id}
	}
	m := &s.missions[idx]

	if m.Status == domain.MissionCompleted {
		out := *m
		return &out, nil
	}

	fee := m.Fee()
	s.balance -= fee
	s.metrics.AddFee(fee)

	if s.user != nil {
		xp := domain.XPForReward(m.Reward)
		s.user.AddXP(xp)
		s.account = s.user
		s.metrics.AddXP(xp)

		entry := domain.WorkHistory{
			ID:           uuid.New().String(),
			MissionID:    m.ID,
			MissionTitle: m.Title,
			PartnerID:    "client-" + shortID(m.ID),
			PartnerName:  "Cliente",
			Role:         domain.RoleProvider,
			CompletedAt:  time.Now().UTC(),
			Rating:       5,
		}
		s.history = append([]domain.WorkHistory{entry}, s.history...)
		s.emit(missionCompletedEvent{xp: xp})

		s.logger.Info("mission completed",
			zap.String("mission_id", m.ID),
			zap.Float64("fee", fee),
			zap.Int("xp_gained", xp),
			zap.Int("new_level", s.user.Level),
		)
	} else {
		s.logger.Info("mission completed without session",
			zap.String("mission_id", m.ID),
			zap.Float64("fee", fee),
		)
	}

	m.Status = domain.MissionCompleted
	s.metrics.IncrMissionEvent("completed")
	s.persist(ctx)

	out := *m
	return &out, nil
}

// Missions returns missions newest-first, optionally filtered by status.
func (s *Store) Missions(status string) []domain.Mission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Mission, 0, len(s.missions))
	for _, m := range s.missions {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

// AcceptedMissions returns missions the provider is working on or has
// finished (accepted + completed), the view the client's "my missions"
// page derives.
func (s *Store) AcceptedMissions() []domain.Mission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Mission, 0, len(s.missions))
	for _, m := range s.missions {
		if m.Status == domain.MissionAccepted || m.Status == domain.MissionCompleted {
			out = append(out, m)
		}
	}
	return out
}

// Mission returns one mission by id.
func (s *Store) Mission(id string) (*domain.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.missionIndex(id); idx >= 0 {
		out := s.missions[idx]
		return &out, nil
	}
	return nil, &domain.ErrNotFound{Resource: "mission", ID: id}
}

// missionIndex finds a mission by id. Callers must hold the store lock.
func (s *Store) missionIndex(id string) int {
	for i := range s.missions {
		if s.missions[i].ID == id {
			return i
		}
	}
	return -1
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
