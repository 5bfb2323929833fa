package request

// SendGroupMessageRequest text 与 image 至少一项非空
type SendGroupMessageRequest struct {
	Text  string `json:"text" binding:"max=5000"`
	Image string `json:"image"`
}
