package client

// Kind classifies transport failures so callers never have to inspect error
// message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindTimeout
	KindNetwork
	KindHTTPStatus
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindHTTPStatus:
		return "http_status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Error is the failure half of an Envelope, carrying the user-facing message
// the backend (or the transport) produced.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when Kind == KindHTTPStatus
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
