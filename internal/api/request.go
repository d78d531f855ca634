package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

// readFields flattens a JSON object or form body into string values. JSON numbers keep their
// literal text so durations are stored as sent.
func readFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	switch mediaType {
	case "application/json":
		return readJSONFields(r.Body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, &HTTPError{Status: http.StatusBadRequest, Message: "unable to parse body"}
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, &HTTPError{Status: http.StatusBadRequest, Message: "unable to parse body"}
		}
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}
	return fields, nil
}

func readJSONFields(body io.Reader) (map[string]string, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, &HTTPError{Status: http.StatusBadRequest, Message: "unable to parse body"}
	}

	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
		case string:
			fields[key] = v
		case json.Number:
			fields[key] = v.String()
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields, nil
}
