package web

// SuccessPayload represents a uniform format for all successful API responses.
type SuccessPayload struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

func NewSuccessPayload(data interface{}) SuccessPayload {
	return SuccessPayload{
		Data: data,
	}
}

// ErrorPayload represents a uniform format for all error API responses.
type ErrorPayload struct {
	Errors []ErrorPayloadItem `json:"errors"`
}

// ErrorPayloadItem represents a uniform format for a single error used in API responses.
type ErrorPayloadItem struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func NewErrorPayload(err error) ErrorPayload {
	return NewErrorPayloadWithTitle("", err.Error())
}

func NewErrorPayloadWithTitle(title, detail string) ErrorPayload {
	return ErrorPayload{
		Errors: []ErrorPayloadItem{
			{
				Title:  title,
				Detail: detail,
			},
		},
	}
}
