package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsStaff  bool   `json:"is_staff"`
}

type SystemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateProfileRequest struct {
	ActorID    int64  `json:"actor_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type UpdateProfileRequest struct {
	Role       string `json:"role"`
	Department string `json:"department"`
}
