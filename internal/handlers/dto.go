package handlers

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"microblog/internal/services"
)

const maxLoginPasswordLength = 256

var passwordRules = []validation.Rule{
	validation.Required,
	validation.By(passwordPolicy),
}

// верхняя граница в байтах (лимит bcrypt)
func passwordPolicy(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return services.CheckPasswordPolicy(s)
}

type registerRequest struct {
	Username        string `json:"username" example:"alice"`
	Email           string `json:"email" example:"alice@example.com"`
	Password        string `json:"password" example:"NewPass1!"`
	ConfirmPassword string `json:"confirm_password" example:"NewPass1!"`
}

func (i registerRequest) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Username, validation.Required, validation.Length(2, 20)),
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 120)),
		validation.Field(&i.Password, passwordRules...),
		validation.Field(&i.ConfirmPassword, validation.Required, validation.In(i.Password).Error("passwords do not match")),
	)
}

type loginRequest struct {
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"NewPass1!"`
}

func (i loginRequest) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 120)),
		validation.Field(&i.Password, validation.Required, validation.Length(0, maxLoginPasswordLength)),
	)
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        any    `json:"user"`
}

type resetRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

func (i resetRequest) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 120)),
	)
}

type resetConfirmRequest struct {
	Password        string `json:"password" example:"NewPass1!"`
	ConfirmPassword string `json:"confirm_password" example:"NewPass1!"`
}

func (i resetConfirmRequest) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Password, passwordRules...),
		validation.Field(&i.ConfirmPassword, validation.Required, validation.In(i.Password).Error("passwords do not match")),
	)
}

type postRequest struct {
	Title   string `json:"title" example:"Mon premier article"`
	Content string `json:"content" example:"Bonjour tout le monde"`
}

func (i postRequest) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Title, validation.Required, validation.Length(0, 100)),
		validation.Field(&i.Content, validation.Required),
	)
}

type accountRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
}

func (i accountRequest) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Username, validation.Required, validation.Length(2, 20)),
		validation.Field(&i.Email, validation.Required, is.Email, validation.Length(0, 120)),
	)
}

type messageResponse struct {
	Message string `json:"message"`
}
