package dto

type VideoFormDTO struct {
	Title       string `form:"title" binding:"max=200"`
	Description string `form:"description" binding:"max=5000"`
	Category    string `form:"category"`
}

type VideoDTO struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	VideoURL       string  `json:"videoUrl"`
	AuthorID       string  `json:"authorId"`
	AuthorName     string  `json:"authorName"`
	AuthorPhotoURL *string `json:"authorPhotoUrl"`
	Views          int64   `json:"views"`
	CreatedAt      string  `json:"createdAt"`
}
