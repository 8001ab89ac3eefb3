package domain

type TranslationResult struct {
	TranslatedText string  `json:"translated_text"`
	SourceLang     string  `json:"source_lang"`
	TargetLang     string  `json:"target_lang"`
	Confidence     float64 `json:"confidence"`
	ModelUsed      string  `json:"model_used"`
}

// Segment is a timed piece of the transcript in the source language.
type Segment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogProb float64 `json:"avg_logprob"`
}

type TranscriptionResult struct {
	// Text is the final text: the translation when one was requested,
	// otherwise the transcript.
	Text           string
	OriginalText   string
	TranslatedText string
	// Confidence is the mean segment log-probability (<= 0).
	Confidence     float64
	SourceLanguage string
	Language       string
	Duration       float64
	Segments       []Segment
	MedicalTerms   []string
}

type SynthesisResult struct {
	Audio       []byte
	ContentType string

	// Transcript is exactly the text that was spoken.
	Transcript string
	SourceLang string
	TargetLang string
	Voice      string
}
