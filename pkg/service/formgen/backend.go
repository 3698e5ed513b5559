package formgen

import "context"

// Request is what a backend sends to its model. Instruction already embeds
// the user's prompt.
type Request struct {
	Instruction string
	Prompt      string
	Image       []byte
	MimeType    string
}

// Backend produces the raw model reply for a request
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
