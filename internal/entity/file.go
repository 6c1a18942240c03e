package entity

import "time"

type File struct {
	ID          string     `bson:"_id,omitempty" json:"_id" gorm:"primaryKey;size:64"`
	BlobName    string     `bson:"blobName" json:"blobName" gorm:"not null"`
	RoomID      string     `bson:"roomId" json:"roomId" gorm:"index;not null"`
	URL         string     `bson:"url" json:"url" gorm:"not null"`
	UploadedAt  time.Time  `bson:"uploadedAt" json:"uploadedAt" gorm:"not null"`
	ExpiryHours int        `bson:"expiryHours" json:"expiryHours"`
	ExpiresAt   *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty" gorm:"index"`
}

// ExpiryFrom returns uploadedAt+hours, or nil when the file is permanent.
func ExpiryFrom(uploadedAt time.Time, hours int) *time.Time {
	if hours <= 0 {
		return nil
	}
	at := uploadedAt.Add(time.Duration(hours) * time.Hour)
	return &at
}

func NewFile(blobName, roomID, url string, uploadedAt time.Time, expiryHours int) *File {
	if expiryHours < 0 {
		expiryHours = 0
	}
	return &File{
		BlobName:    blobName,
		RoomID:      NormalizeRoomCode(roomID),
		URL:         url,
		UploadedAt:  uploadedAt,
		ExpiryHours: expiryHours,
		ExpiresAt:   ExpiryFrom(uploadedAt, expiryHours),
	}
}

// ClampExpiryHours bounds hours to [0, max]. A non-positive max disables the
// upper bound.
func ClampExpiryHours(hours, max int) int {
	if hours <= 0 {
		return 0
	}
	if max > 0 && hours > max {
		return max
	}
	return hours
}
