package entity

import (
	"net/url"
	"path"
	"time"
)

type MessageType string

const (
	MessageTypeText MessageType = "text"
	MessageTypeFile MessageType = "file"
)

// Message is never mutated after creation. Fields of the unused type stay
// empty and are omitted from both the stored document and the JSON payload.
type Message struct {
	ID        string      `bson:"_id,omitempty" json:"_id" gorm:"primaryKey;size:64"`
	RoomID    string      `bson:"roomId" json:"roomId" gorm:"index;not null"`
	Sender    string      `bson:"sender" json:"sender" gorm:"not null"`
	Type      MessageType `bson:"type" json:"type" gorm:"index:idx_messages_type_expiry;not null"`
	Content   string      `bson:"content,omitempty" json:"content,omitempty"`
	FileURL   string      `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	FileType  string      `bson:"fileType,omitempty" json:"fileType,omitempty"`
	FileName  string      `bson:"fileName,omitempty" json:"fileName,omitempty"`
	Timestamp time.Time   `bson:"timestamp" json:"timestamp"`
	ExpiresAt *time.Time  `bson:"expiresAt,omitempty" json:"expiresAt,omitempty" gorm:"index:idx_messages_type_expiry"`
	Encrypted bool        `bson:"encrypted" json:"encrypted"`
}

func (m *Message) IsFile() bool {
	return m.Type == MessageTypeFile
}

func (m *Message) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && !m.ExpiresAt.After(now)
}

// BlobName is the object name the upload path handed out as fileName. Older
// records without one fall back to the last segment of the file URL.
func (m *Message) BlobName() string {
	if !m.IsFile() {
		return ""
	}
	if m.FileName != "" {
		return m.FileName
	}
	if m.FileURL == "" {
		return ""
	}
	u, err := url.Parse(m.FileURL)
	if err != nil {
		return ""
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil || name == "/" || name == "." {
		return ""
	}
	return name
}
