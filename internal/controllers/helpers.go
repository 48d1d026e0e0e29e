package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultRequestTimeout = 3 * time.Second

	defaultPageSize = 50
	maxPageSize     = 200
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// jsonError единый формат тела ошибки.
func jsonError(ctx *gin.Context, status int, err error) {
	ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// queryInt читает целочисленный query-параметр в границах [minV, maxV].
func queryInt(ctx *gin.Context, name string, fallback, minV, maxV int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minV {
		return fallback
	}
	if v > maxV {
		return maxV
	}
	return v
}
