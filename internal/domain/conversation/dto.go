// internal/domain/conversation/dto.go
package conversation

type SendMessageRequest struct {
	AuthorKind string `json:"author_kind" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type FinishRequest struct {
	Sale bool `json:"sale"`
}

type ListResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}
