package ports

import "context"

type RecognitionRequest struct {
	AudioPath string
	Language  string
}

type RecognizedSegment struct {
	Start      float64
	End        float64
	Text       string
	AvgLogProb float64
}

type RecognitionResponse struct {
	Text     string
	Language string
	Duration float64
	Segments []RecognizedSegment
}

// Recognizer turns an audio file into timed text segments.
type Recognizer interface {
	Recognize(ctx context.Context, req RecognitionRequest) (RecognitionResponse, error)
	Name() string
}
