package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/T-Watch/T-Watch-Backend/internal/auth"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// binder decodes the operation input from a request.
type binder[Req any] func(c *gin.Context) (Req, error)

// endpoint turns operations into gin handlers. Gated endpoints check the
// caller's token before the request body is even decoded.
type endpoint struct {
	gate *auth.Gate
	log  *zap.Logger
}

func serve[Req, Resp any](e endpoint, gated bool, status int, bind binder[Req], op auth.Operation[Req, Resp]) gin.HandlerFunc {
	run := auth.Operation[*gin.Context, Resp](func(ctx context.Context, c *gin.Context) (Resp, error) {
		req, err := bind(c)
		if err != nil {
			var zero Resp
			return zero, fmt.Errorf("%w: %v", service.ErrValidation, err)
		}
		return op(ctx, req)
	})
	if gated {
		run = auth.Guard(e.gate, run)
	}

	return func(c *gin.Context) {
		resp, err := run(c.Request.Context(), c)
		if err != nil {
			respondError(c, e.log, err, resp)
			return
		}
		respond(c, status, resp)
	}
}

func bindJSON[T any](c *gin.Context) (T, error) {
	var v T
	err := c.ShouldBindJSON(&v)
	return v, err
}

func bindParam(name string) binder[string] {
	return func(c *gin.Context) (string, error) {
		v := c.Param(name)
		if v == "" {
			return "", fmt.Errorf("%s is required", name)
		}
		return v, nil
	}
}

func bindQuery(name string) binder[string] {
	return func(c *gin.Context) (string, error) {
		return c.Query(name), nil
	}
}

// healthz answers 503 until the storage connection is ready.
func healthz(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready() {
			c.JSON(http.StatusServiceUnavailable, Envelope{Error: &ErrorBody{
				Code: CodeStorageUnavailable, Message: "storage is not connected yet",
			}})
			return
		}
		respond(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
