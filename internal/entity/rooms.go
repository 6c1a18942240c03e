package entity

import (
	"strings"
	"time"
)

type Room struct {
	Code      string     `bson:"code" json:"code" gorm:"primaryKey;size:64"`
	Creator   string     `bson:"creator" json:"creator" gorm:"not null"`
	Members   []string   `bson:"members" json:"members" gorm:"-"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt" gorm:"not null;index"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty" gorm:"index"`
}

// RoomMember backs Room.Members in the SQL store.
type RoomMember struct {
	ID       int64     `gorm:"primaryKey"`
	RoomCode string    `gorm:"not null;uniqueIndex:idx_room_member"`
	ClientID string    `gorm:"not null;uniqueIndex:idx_room_member"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *Room) HasMember(clientID string) bool {
	for _, m := range r.Members {
		if m == clientID {
			return true
		}
	}
	return false
}

func (r *Room) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}
