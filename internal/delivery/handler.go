package delivery

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Vovarama1992/medassist/internal/domain"
	"github.com/Vovarama1992/medassist/internal/languages"
)

const serviceName = "medassist"

type Translator interface {
	Translate(ctx context.Context, text, source, target string) (domain.TranslationResult, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, inputLang, outputLang string) (domain.TranscriptionResult, error)
}

type Speaker interface {
	Synthesize(ctx context.Context, text, sourceLang, targetLang string) (domain.SynthesisResult, error)
}

// UploadLimit bounds /stt uploads. Label is the human form used in messages.
type UploadLimit struct {
	MaxBytes int64
	Label    string
}

type Handler struct {
	translator  Translator
	transcriber Transcriber
	speaker     Speaker
	registry    *languages.Registry
	upload      UploadLimit
	validate    *validator.Validate
	log         *logger.ZapLogger
	sugar       *zap.SugaredLogger
}

func NewHandler(
	translator Translator,
	transcriber Transcriber,
	speaker Speaker,
	registry *languages.Registry,
	upload UploadLimit,
	log *logger.ZapLogger,
	sugar *zap.SugaredLogger,
) *Handler {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	if log == nil {
		log = logger.NewZapLogger(sugar)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	// report json/form names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Handler{
		translator:  translator,
		transcriber: transcriber,
		speaker:     speaker,
		registry:    registry,
		upload:      upload,
		validate:    v,
		log:         log,
		sugar:       sugar,
	}
}

// stage writes one structured line per pipeline stage of a request.
func (h *Handler) stage(r *http.Request, endpoint, stage string, kv ...any) {
	fields := append([]any{
		"endpoint", endpoint,
		"stage", stage,
		"request_id", middleware.GetReqID(r.Context()),
	}, kv...)
	h.sugar.Infow(endpoint+" "+stage, fields...)
}
