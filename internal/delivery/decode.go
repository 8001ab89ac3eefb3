package delivery

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Vovarama1992/medassist/internal/apperr"
)

const maxTextBody = 1 << 20

// formFields maps form field names to destinations.
type formFields map[string]*string

// decodeBody fills dst from a JSON body, or from urlencoded/multipart form
// fields when the request is a form post.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fields formFields) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxTextBody)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			if tooLarge(err) {
				return apperr.TooLarge("1 MB")
			}
			return apperr.Validation("invalid form body")
		}
		for name, ptr := range fields {
			*ptr = strings.TrimSpace(r.FormValue(name))
		}
		return nil
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		switch {
		case tooLarge(err):
			return apperr.TooLarge("1 MB")
		case err == io.EOF:
			return apperr.Validation("request body is empty")
		default:
			return apperr.Validation("invalid json body")
		}
	}
	return nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
