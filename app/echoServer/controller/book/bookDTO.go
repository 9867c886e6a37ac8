package book

type CreateBookReq struct {
	Name       string   `json:"name" validate:"required"`
	Category   string   `json:"category" validate:"required"`
	RentPerDay *float64 `json:"rent_per_day" validate:"required,gte=0"`
}
