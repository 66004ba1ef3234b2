package httpstatus

// Messages for the upstream status codes worth distinguishing. Codes
// outside the table fall back to their class message by first digit.
var statusMessages = map[string]string{
	"400": "Bad request",
	"401": "Unauthorized",
	"402": "Payment required",
	"403": "Forbidden",
	"404": "Not found",
	"405": "Method not allowed",
	"406": "Not acceptable",
	"407": "Proxy authentication required",
	"408": "Request timeout",
	"409": "Conflict",
	"410": "Gone",
	"412": "Precondition failed",
	"413": "Payload too large",
	"415": "Unsupported media type",
	"422": "Unprocessable entity",
	"429": "Too many requests",
	"500": "Internal server error",
	"501": "Not implemented",
	"502": "Bad gateway",
	"503": "Service unavailable",
	"504": "Gateway timeout",
}

const (
	UnknownMessage     = "Unknown error occurred"
	ClientErrorMessage = "Client error occurred"
	ServerErrorMessage = "Server error occurred"
)

// Resolve maps a located status value to a human-readable message.
// The canonical code is the input passed through unchanged; an empty
// input resolves to no code and the unknown sentinel.
func Resolve(code string) (string, string) {
	if code == "" {
		return "", UnknownMessage
	}

	if message, ok := statusMessages[code]; ok {
		return code, message
	}

	switch code[0] {
	case '4':
		return code, ClientErrorMessage
	case '5':
		return code, ServerErrorMessage
	default:
		return code, UnknownMessage
	}
}
