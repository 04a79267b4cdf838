package store

import (
	"fmt"
	"time"

	"github.com/missionmarket/mission-market-go/internal/domain"

	"github.com/google/uuid"
)

// Mutating operations describe what happened with an event value; the
// translation into a user-facing Notification lives here, keeping the
// business logic free of presentation strings.

type event interface {
	notification() domain.Notification
}

func newNotification(kind, title, message string) domain.Notification {
	return domain.Notification{
		ID:      uuid.New().String(),
		Type:    kind,
		Title:   title,
		Message: message,
		Date:    time.Now().UTC(),
	}
}

type welcomeEvent struct{}

func (welcomeEvent) notification() domain.Notification {
	return newNotification(domain.NotifSuccess,
		"Bem-vindo!", "Sua conta foi criada com sucesso.")
}

type missionCreatedEvent struct{ title string }

func (e missionCreatedEvent) notification() domain.Notification {
	return newNotification(domain.NotifSuccess,
		"Missão Criada",
		fmt.Sprintf("Sua missão %q está visível para prestadores.", e.title))
}

type missionAcceptedEvent struct{ title string }

func (e missionAcceptedEvent) notification() domain.Notification {
	return newNotification(domain.NotifSuccess,
		"Missão Aceita",
		fmt.Sprintf("Você aceitou a missão %q.", e.title))
}

type missionCompletedEvent struct{ xp int }

func (e missionCompletedEvent) notification() domain.Notification {
	return newNotification(domain.NotifSuccess,
		"Missão Concluída",
		fmt.Sprintf("Você ganhou %d XP e completou a missão!", e.xp))
}

type levelLockedEvent struct{ required int }

func (e levelLockedEvent) notification() domain.Notification {
	return newNotification(domain.NotifWarning,
		"Erro",
		fmt.Sprintf("Nível %d necessário.", e.required))
}

type friendAddedEvent struct{ name string }

func (e friendAddedEvent) notification() domain.Notification {
	return newNotification(domain.NotifSuccess,
		"Amigo Adicionado",
		fmt.Sprintf("%s foi adicionado aos seus amigos.", e.name))
}

type friendDuplicateEvent struct{}

func (friendDuplicateEvent) notification() domain.Notification {
	return newNotification(domain.NotifWarning,
		"Aviso", "Este usuário já está na sua lista de amigos.")
}

type friendRemovedEvent struct{ name string }

func (e friendRemovedEvent) notification() domain.Notification {
	return newNotification(domain.NotifInfo,
		"Amigo Removido",
		fmt.Sprintf("%s foi removido dos seus amigos.", e.name))
}

// emit translates an event into a Notification and prepends it, keeping
// the collection newest-first. Callers must hold the store lock.
func (s *Store) emit(ev event) {
	n := ev.notification()
	s.notifications = append([]domain.Notification{n}, s.notifications...)
}
