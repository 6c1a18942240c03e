package chat_dto

import "time"

type RoomResponse struct {
	Code      string     `json:"code"`
	Creator   string     `json:"creator"`
	Members   []string   `json:"members"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type UploadResponse struct {
	FileURL      string     `json:"fileUrl"`
	FileName     string     `json:"fileName"`
	FileType     string     `json:"fileType"`
	OriginalName string     `json:"originalName"`
	Size         int64      `json:"size"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

type SweepTriggerResponse struct {
	Started bool `json:"started"`
}
