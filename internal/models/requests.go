package models

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CreateCategoryRequest struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type UpdateCategoryRequest struct {
	Color string `json:"color"`
}

type CreateTransactionRequest struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type CreateGroupRequest struct {
	Name         string   `json:"name"`
	MemberEmails []string `json:"memberEmails"`
}

type GroupMembersRequest struct {
	Emails []string `json:"emails"`
}
