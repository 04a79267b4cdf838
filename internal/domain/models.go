// Package domain defines the core business entities for the Mission Market.
// These models are independent of transport and persistence and mirror the
// JSON layout the web client stores locally.
package domain

import (
	"math"
	"time"
)

// ============================================================
// Missions
// ============================================================

// Mission status values. Transitions are one-directional:
// available → accepted → completed.
const (
	MissionAvailable = "available"
	MissionAccepted  = "accepted"
	MissionCompleted = "completed"
)

// Payment methods accepted for a mission.
const (
	PaymentPix  = "pix"
	PaymentCash = "cash"
	PaymentCard = "card"
)

// ServiceFeeRate is the platform fee debited from the provider's balance
// when a mission completes: 15% of the reward.
const ServiceFeeRate = 0.15

// Mission is a postable, acceptable, completable paid task.
type Mission struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Reward        float64 `json:"reward"`
	Location      string  `json:"location"`
	Distance      string  `json:"distance"`
	Duration      string  `json:"duration"`
	MinLevel      int     `json:"minLevel"`
	PaymentMethod string  `json:"paymentMethod"`
	Status        string  `json:"status"`
}

// Fee returns the service fee for this mission.
func (m *Mission) Fee() float64 {
	return m.Reward * ServiceFeeRate
}

// ============================================================
// Users & progression
// ============================================================

// User is the active session identity. Email doubles as the participant
// key for messaging and friendship.
type User struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	CPF          string  `json:"cpf,omitempty"`
	Level        int     `json:"level"`
	XP           int     `json:"xp"`
	Rating       float64 `json:"rating"`
	Verified     bool    `json:"verified"`
	PasswordHash string  `json:"passwordHash,omitempty"`
}

// LevelForXP is the single progression formula: level = floor(xp/100) + 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/100 + 1
}

// AddXP is the only mutation path for XP. It always recomputes Level so
// the level invariant cannot be skipped.
func (u *User) AddXP(points int) {
	u.XP += points
	u.Level = LevelForXP(u.XP)
}

// XPForReward converts a mission reward into experience points.
func XPForReward(reward float64) int {
	return int(math.Floor(reward))
}

// ============================================================
// Notifications
// ============================================================

// Notification types.
const (
	NotifInfo    = "info"
	NotifSuccess = "success"
	NotifWarning = "warning"
)

// Notification is an in-app notice produced as a side effect of store
// operations. The collection is ordered newest-first.
type Notification struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}

// ============================================================
// Social
// ============================================================

// Friend is an entry in the user's friends list, unique by ID.
type Friend struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Rating float64 `json:"rating"`
	Level  int     `json:"level"`
	Avatar string  `json:"avatar,omitempty"`
}

// Message is immutable once created except for the read flag, which only
// ever flips from unread to read.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// Conversation summarizes a message thread with one partner.
type Conversation struct {
	PartnerID   string    `json:"partnerId"`
	PartnerName string    `json:"partnerName,omitempty"`
	LastMessage string    `json:"lastMessage"`
	LastAt      time.Time `json:"lastAt"`
	Unread      int       `json:"unread"`
}

// ============================================================
// Work history
// ============================================================

// Work history roles.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// WorkHistory records one completed mission for the acting user.
// Entries are append-only.
type WorkHistory struct {
	ID           string    `json:"id"`
	MissionID    string    `json:"missionId"`
	MissionTitle string    `json:"missionTitle"`
	PartnerID    string    `json:"partnerId"`
	PartnerName  string    `json:"partnerName"`
	Role         string    `json:"role"`
	CompletedAt  time.Time `json:"completedAt"`
	Rating       int       `json:"rating,omitempty"`
}
