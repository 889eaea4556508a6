package notes

import "time"

type Note struct {
	ID         string    `json:"id"`
	ObjectType string    `json:"object_type"`
	ObjectID   string    `json:"object_id"`
	Message    string    `json:"message"`
	ActorID    string    `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateNoteRequest struct {
	Message string `json:"message" binding:"required"`
}

type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}
