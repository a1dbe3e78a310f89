package domain

import "time"

// AvatarUpload describes a pending direct-to-storage upload of a coach
// profile picture. The file itself never passes through the API.
type AvatarUpload struct {
	CoachID     string    `json:"coachId"`
	ObjectKey   string    `json:"objectKey"`
	UploadURL   string    `json:"uploadUrl"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
