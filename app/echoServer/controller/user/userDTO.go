package user

type CreateUserReq struct {
	Name string `json:"name" validate:"required"`
}
