package app

import (
	"errors"

	"ilanportali/internal/apiclient"
)

const (
	msgFetchFailed    = "İlanlar yüklenirken bir hata oluştu. Lütfen daha sonra tekrar deneyin."
	msgAuthFailed     = "Bir hata oluştu. Lütfen tekrar deneyin."
	msgLoginRequired  = "İlan vermek için giriş yapmalısınız."
	msgImageRequired  = "Lütfen bir resim yükleyin."
	msgInvalidField   = "Lütfen tüm alanları doğru doldurun."
	msgCreateProtocol = "İlan eklendi ancak sunucudan geçersiz yanıt alındı."
	msgCreateFailed   = "İlan eklenirken bir hata oluştu."
	MsgListingAdded   = "İlanınız başarıyla eklendi!"
	MsgLoggedIn       = "Başarıyla giriş yaptınız!"
	MsgSignedUp       = "Hesabınız başarıyla oluşturuldu!"
	MsgLoggedOut      = "Başarıyla çıkış yaptınız."
)

var (
	// ErrLoginRequired is returned when an action needs an authenticated session.
	ErrLoginRequired = errors.New("login required")
)

// UserError carries a localized message for display next to the cause.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// serverMessage returns the message the API put in an error payload.
func serverMessage(err error) string {
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.ServerMessage()
	}
	return ""
}

// authError prefers the server's message and otherwise falls back to the
// generic one.
func authError(err error) *UserError {
	if msg := serverMessage(err); msg != "" {
		return &UserError{Message: msg, Err: err}
	}
	return &UserError{Message: msgAuthFailed, Err: err}
}

func createError(err error) *UserError {
	if msg := serverMessage(err); msg != "" {
		return &UserError{Message: msg, Err: err}
	}
	var validationErr *apiclient.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field == "image" {
			return &UserError{Message: msgImageRequired, Err: err}
		}
		return &UserError{Message: msgInvalidField, Err: err}
	}
	var protoErr *apiclient.ProtocolError
	if errors.As(err, &protoErr) {
		return &UserError{Message: msgCreateProtocol, Err: err}
	}
	var httpErr *apiclient.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return &UserError{Message: httpErr.Message, Err: err}
	}
	return &UserError{Message: msgCreateFailed, Err: err}
}
