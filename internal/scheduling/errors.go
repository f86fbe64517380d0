package scheduling

import "errors"

// ValidationError marks input the caller can fix. Handlers map it to a 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrTherapistNotFound   = errors.New("therapist not found")
)
