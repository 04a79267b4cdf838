package store

import (
	"context"

	"github.com/missionmarket/mission-market-go/internal/domain"

	"go.uber.org/zap"
)

// demoMissions mirrors the fixture set the web client ships with.
func demoMissions() []domain.Mission {
	return []domain.Mission{
		{
			ID:            "1",
			Title:         "Entrega de Encomenda Local",
			Description:   "Preciso que leve um pacote de chaves até o bairro vizinho. Urgente.",
			Reward:        25.00,
			Location:      "Centro",
			Distance:      "1.2km",
			Duration:      "30 min",
			MinLevel:      1,
			PaymentMethod: domain.PaymentPix,
			Status:        domain.MissionAvailable,
		},
		{
			ID:            "2",
			Title:         "Passear com Golden Retriever",
			Description:   "Passeio de 45 minutos com cachorro de porte grande. Ele é muito dócil.",
			Reward:        40.00,
			Location:      "Jardins",
			Distance:      "500m",
			Duration:      "45 min",
			MinLevel:      1,
			PaymentMethod: domain.PaymentCash,
			Status:        domain.MissionAvailable,
		},
		{
			ID:            "3",
			Title:         "Montagem de Móvel Pequeno",
			Description:   "Ajuda para montar uma mesa de escritório simples. Tenho as ferramentas.",
			Reward:        60.00,
			Location:      "Vila Madalena",
			Distance:      "2.5km",
			Duration:      "1h",
			MinLevel:      2,
			PaymentMethod: domain.PaymentPix,
			Status:        domain.MissionAvailable,
		},
		{
			ID:            "4",
			Title:         "Organização de Garagem",
			Description:   "Preciso de ajuda, de 2 a 3 horas, para tirar caixas e varrer a garagem.",
			Reward:        100.00,
			Location:      "Moema",
			Distance:      "3.0km",
			Duration:      "2h",
			MinLevel:      3,
			PaymentMethod: domain.PaymentCash,
			Status:        domain.MissionAvailable,
		},
		{
			ID:            "5",
			Title:         "Entrega de Documentos em Cartório",
			Description:   "Levar envelope lacrado e pegar protocolo. Manda foto do protocolo.",
			Reward:        35.00,
			Location:      "Sé",
			Distance:      "4.0km",
			Duration:      "1h 30m",
			MinLevel:      2,
			PaymentMethod: domain.PaymentPix,
			Status:        domain.MissionAvailable,
		},
	}
}

// Seed inserts the demo missions, skipping any id already present, and
// returns how many were added. Meant for local development.
func (s *Store) Seed(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Store.Seed")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.notReady(); err != nil {
		return 0, err
	}

	added := 0
	for _, m := range demoMissions() {
		if s.missionIndex(m.ID) >= 0 {
			continue
		}
		s.missions = append(s.missions, m)
		added++
	}
	if added > 0 {
		s.persist(ctx)
	}

	s.logger.Info("seeded demo missions", zap.Int("added", added))
	return added, nil
}
