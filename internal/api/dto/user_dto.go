package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// AddressPayload is the JSON form of a postal address.
type AddressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func (a *AddressPayload) toDomain() *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
}

// CreateUserRequest payload for admin-created accounts.
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,max=120"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6,max=72"`
	Role     string          `json:"role"`
	Phone    string          `json:"phone"`
	Address  *AddressPayload `json:"address"`
}

// ToInput converts the request into service input.
func (r CreateUserRequest) ToInput() service.UserCreateInput {
	return service.UserCreateInput{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     domain.Role(r.Role),
		Phone:    r.Phone,
		Address:  r.Address.toDomain(),
	}
}

// UpdateUserRequest payload. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string         `json:"name"`
	Email    *string         `json:"email" validate:"omitempty,email"`
	Role     *string         `json:"role"`
	Phone    *string         `json:"phone"`
	Address  *AddressPayload `json:"address"`
	IsActive *bool           `json:"is_active"`
}

// ToInput converts the request into service input.
func (r UpdateUserRequest) ToInput() service.UserUpdateInput {
	in := service.UserUpdateInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address.toDomain(),
		Active:  r.IsActive,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		in.Role = &role
	}
	return in
}

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      domain.Role    `json:"role"`
	Phone     string         `json:"phone,omitempty"`
	Address   AddressPayload `json:"address"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Phone: u.Phone,
		Address: AddressPayload{
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			ZipCode: u.Address.ZipCode,
			Country: u.Address.Country,
		},
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
