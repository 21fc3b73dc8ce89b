package api

// apiError carries an HTTP status and the caller-facing detail message. It
// renders as the {"detail": ...} body every failure response uses.
type apiError struct {
	Code   int    `json:"-"`
	Detail string `json:"detail"`
}

func (e *apiError) Error() string { return e.Detail }
