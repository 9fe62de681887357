package domain

type ChatMessage struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Room is the shared session state every member of a room observes.
// Instances are owned by the room repository; everything handed out is a
// copy valid only for the duration of one operation.
type Room struct {
	Id        string        `json:"id"`
	Name      string        `json:"name"`
	VideoURL  string        `json:"videoUrl"`
	Playing   bool          `json:"playing"`
	Progress  float64       `json:"progress"`
	UserCount int           `json:"userCount"`
	Messages  []ChatMessage `json:"messages"`
}
