package ports

import "context"

type SynthesisRequest struct {
	Text     string
	Voice    string
	Language string
	OutPath  string
}

// Synthesizer writes speech audio for Text into OutPath and returns the
// content type of what it wrote.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (string, error)
	Name() string
}
