package middlewares

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// gzipWriters пул, чтобы не аллоцировать компрессор на каждый ответ.
var gzipWriters = sync.Pool{
	New: func() any { return gzip.NewWriter(io.Discard) },
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gz.Write(data) //nolint:wrapcheck
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gz.Write([]byte(s)) //nolint:wrapcheck
}

// GzipMiddleware распаковывает сжатые тела запросов и сжимает ответы,
// если клиент прислал Accept-Encoding: gzip.
func GzipMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !decompressRequest(ctx) {
			return
		}
		if !strings.Contains(ctx.Request.Header.Get("Accept-Encoding"), "gzip") {
			ctx.Next()
			return
		}

		gz := gzipWriters.Get().(*gzip.Writer) //nolint:errcheck
		gz.Reset(ctx.Writer)
		defer func() {
			if closeErr := gz.Close(); closeErr != nil {
				_ = ctx.Error(fmt.Errorf("close gzip writer: %w", closeErr))
			}
			gzipWriters.Put(gz)
		}()

		ctx.Header("Content-Encoding", "gzip")
		ctx.Header("Vary", "Accept-Encoding")
		ctx.Writer = &gzipResponseWriter{ResponseWriter: ctx.Writer, gz: gz}
		ctx.Next()
	}
}

// decompressRequest подменяет сжатое тело запроса на распакованное.
// Возвращает false, если запрос отклонен.
func decompressRequest(ctx *gin.Context) bool {
	if !strings.Contains(ctx.Request.Header.Get("Content-Encoding"), "gzip") {
		return true
	}

	gzReader, gzErr := gzip.NewReader(ctx.Request.Body)
	if gzErr != nil {
		_ = ctx.Error(fmt.Errorf("open gzip body: %w", gzErr))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	ctx.Request.Body = gzReader
	return true
}
