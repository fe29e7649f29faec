package types

type SuccessEnvelope struct {
	Data any `json:"data"`
	// Warning carries non-fatal side-effect failures (an email that could
	// not be sent) without turning the response into an error.
	Warning string `json:"warning,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
