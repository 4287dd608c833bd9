package rest

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
	"github.com/dmitrijs2005/blogkeeper/internal/server/services"
	"github.com/dmitrijs2005/blogkeeper/internal/server/storage"
	"github.com/go-chi/chi/v5"
)

const (
	imageField        = "image"
	maxJSONBodySize   = 1 << 20
	maxFormFieldBytes = 1 << 20
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty body reads as an empty object.
			return nil
		}
		return common.WrapError(common.KindInvalidInput, "Invalid request body", err)
	}
	return nil
}

type postRequest struct {
	Title    string `json:"title"`
	Desc     string `json:"desc"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (p postRequest) input() services.PostInput {
	return services.PostInput{Title: p.Title, Description: p.Desc, Content: p.Content, Category: p.Category}
}

// readPostInput accepts a JSON body or a multipart form whose optional
// "image" file is spooled to the upload directory. The caller owns the
// returned upload.
func (s *Server) readPostInput(w http.ResponseWriter, r *http.Request) (services.PostInput, *storage.Upload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req postRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return services.PostInput{}, nil, err
		}
		return req.input(), nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	mr, err := r.MultipartReader()
	if err != nil {
		return services.PostInput{}, nil, common.WrapError(common.KindInvalidInput, "Invalid multipart form", err)
	}

	var (
		req    postRequest
		upload *storage.Upload
	)
	fail := func(err error) (services.PostInput, *storage.Upload, error) {
		_ = upload.Discard()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.PostInput{}, nil, common.WrapError(common.KindInvalidInput, "Upload is too large", err)
		}
		return services.PostInput{}, nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(common.WrapError(common.KindInvalidInput, "Invalid multipart form", err))
		}

		if part.FormName() == imageField && part.FileName() != "" {
			if upload != nil {
				_ = part.Close()
				continue
			}
			upload, err = storage.Spool(s.config.UploadDir, part.FileName(), part.Header.Get("Content-Type"), part)
			_ = part.Close()
			if err != nil {
				if errors.As(err, new(*http.MaxBytesError)) {
					return fail(err)
				}
				return fail(common.WrapError(common.KindInternal, "Internal server error", err))
			}
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, maxFormFieldBytes))
		_ = part.Close()
		if err != nil {
			return fail(common.WrapError(common.KindInvalidInput, "Invalid multipart form", err))
		}
		switch part.FormName() {
		case "title":
			req.Title = string(value)
		case "desc":
			req.Desc = string(value)
		case "content":
			req.Content = string(value)
		case "category":
			req.Category = string(value)
		}
	}

	return req.input(), upload, nil
}

// pageRequest reads page and limit. Missing or malformed values fall back
// to the defaults.
func pageRequest(r *http.Request) services.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(strings.TrimSpace(q.Get("page")))
	limit, _ := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	return services.PageRequest{Page: page, Limit: limit}
}

// pathParam returns the decoded value of a route parameter.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
