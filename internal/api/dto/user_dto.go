package dto

type RegisterDTO struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=6,max=64"`
	DisplayName string `json:"displayName" binding:"required,max=64"`
}

type CredentialDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenDTO struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"` // 秒
}

type UserDTO struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	PhotoURL    *string         `json:"photoURL"`
	Claims      map[string]bool `json:"claims"`
}
