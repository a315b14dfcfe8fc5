package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/tsurilog/fishlog-backend/internal/middleware"
	"github.com/tsurilog/fishlog-backend/pkg/logger"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error

	writeErrorCalled bool
	writeErrorStatus int
	writeErrorCode   string
	writeErrorMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	s.writeErrorCalled = true
	s.writeErrorStatus = status
	s.writeErrorCode = code
	s.writeErrorMsg = message
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

// authedRequest builds a request carrying a verified identity and a quiet
// logger, the way the middleware chain would hand it to a handler.
func authedRequest(method, target string, body *bytes.Buffer, uid string) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), middleware.UIDKey, uid)
	ctx = context.WithValue(ctx, middleware.EmailKey, uid+"@example.com")
	ctx = logger.ToContext(ctx, logger.New("", logger.NewTestHandler))
	return req.WithContext(ctx)
}

type filePart struct {
	field string
	data  []byte
}

// multipartBody builds a multipart form from field values and file parts,
// returning the body and its content type. Repeating a field name in files
// yields multiple parts under that name.
func multipartBody(fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for name, value := range fields {
		mw.WriteField(name, value)
	}
	for _, f := range files {
		fw, _ := mw.CreateFormFile(f.field, f.field+".jpg")
		fw.Write(f.data)
	}
	mw.Close()
	return buf, mw.FormDataContentType()
}
