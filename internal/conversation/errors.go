package conversation

// ValidationError rejects an input. The chat gets Message and keeps its state.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(message string, err error) *ValidationError {
	return &ValidationError{Message: message, Err: err}
}
