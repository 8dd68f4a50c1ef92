package messages

import "github.com/kendevco/discordant/internal/domain"

type createSystemMessageRequest struct {
	MessageID  string `json:"messageId"`
	Content    string `json:"content"`
	FileURL    string `json:"fileUrl"`
	MemberName string `json:"memberName"`
	// AsIs bypasses routing and persists the content verbatim (onboarding
	// announcements).
	AsIs bool `json:"asIs"`
}

type createSystemMessageResponse struct {
	Message *domain.Message `json:"message"`
}
