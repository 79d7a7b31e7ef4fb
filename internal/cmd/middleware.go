package cmd

import (
	"net/http"
	"strings"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/gogf/gf/v2/errors/gcode"
	"github.com/gogf/gf/v2/errors/gerror"
	"github.com/gogf/gf/v2/net/ghttp"
)

const (
	// 语料上传文件大小限制: 100MB
	maxCorpusUploadSize = 100 << 20 // 100MB
)

// MiddlewareMultipartMaxMemory 限制语料文件的上传大小
func MiddlewareMultipartMaxMemory(r *ghttp.Request) {
	// 只处理 multipart/form-data 请求
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		r.Middleware.Next()
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/v1/documents/upload") {
		if err := r.ParseMultipartForm(maxCorpusUploadSize); err != nil {
			r.Response.WriteHeader(http.StatusRequestEntityTooLarge)
			r.Response.WriteJson(ghttp.DefaultHandlerResponse{
				Code:    int(errors.ErrFileSizeExceeded),
				Message: "File size exceeds the corpus upload limit (100MB)",
				Data:    nil,
			})
			return
		}
	}

	r.Middleware.Next()
}

// MiddlewareHandlerResponse is the default middleware handling handler response object and its error.
func MiddlewareHandlerResponse(r *ghttp.Request) {
	r.Middleware.Next()

	// There's custom buffer content, it then exits current handler.
	if r.Response.BufferLength() > 0 || r.Response.Writer.BytesWritten() > 0 {
		return
	}

	var (
		msg  string
		err  = r.GetError()
		res  = r.GetHandlerResponse()
		code = gerror.Code(err)
	)
	if err != nil {
		msg = err.Error()
		// 业务错误携带自己的错误码和HTTP状态码
		if appErr := errors.GetAppError(err); appErr != nil {
			r.Response.WriteHeader(appErr.Code.HTTPStatusCode())
			r.Response.WriteJson(ghttp.DefaultHandlerResponse{
				Code:    int(appErr.Code),
				Message: msg,
				Data:    nil,
			})
			return
		}
		if code == gcode.CodeNil {
			code = gcode.CodeInternalError
		}
	} else {
		if r.Response.Status > 0 && r.Response.Status != http.StatusOK {
			switch r.Response.Status {
			case http.StatusNotFound:
				code = gcode.CodeNotFound
			case http.StatusForbidden:
				code = gcode.CodeNotAuthorized
			default:
				code = gcode.CodeUnknown
			}
			// It creates an error as it can be retrieved by other middlewares.
			err = gerror.NewCode(code, msg)
			r.SetError(err)
		} else {
			code = gcode.CodeOK
		}
		msg = code.Message()
	}
	r.Response.WriteJson(ghttp.DefaultHandlerResponse{
		Code:    code.Code(),
		Message: msg,
		Data:    res,
	})
}
