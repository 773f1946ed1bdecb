package response

type ResponseCode int

const (
	Success ResponseCode = 100
)

// Response is the failure envelope shared by every endpoint:
// {success:false, error:"<CodeName>", message}.
type Response struct {
	Success bool         `json:"success"`
	Code    ResponseCode `json:"code"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

type ResponseOptions func(*Response)

func WithMessage(message string) ResponseOptions {
	return func(r *Response) {
		r.Message = message
	}
}

func WithCode(code ResponseCode) ResponseOptions {
	return func(r *Response) {
		r.Code = code
		r.Success = code == Success
		if !r.Success {
			r.Error = code.String()
		}
	}
}

func CustomResponse(opts ...ResponseOptions) Response {
	response := Response{}
	for _, opt := range opts {
		opt(&response)
	}
	return response
}

func SuccessResponse(message string) Response {
	return CustomResponse(WithCode(Success), WithMessage(message))
}

func ErrorResponse(code ResponseCode, msg string) Response {
	return CustomResponse(WithCode(code), WithMessage(msg))
}
