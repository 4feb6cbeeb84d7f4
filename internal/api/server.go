// Package api exposes the bridge status and device commands over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leandrodaf/pedalbridge/sdk/contracts"
)

// Controller is the presentation contract the API serves.
type Controller interface {
	Status() contracts.Status
	SelectDevice(ctx context.Context, device contracts.MidiDevice) error
	RefreshDevices(ctx context.Context) error
}

const requestTimeout = 5 * time.Second

// NewRouter builds the HTTP routes.
func NewRouter(ctrl Controller, logger contracts.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, ctrl.Status())
		})
		v1.GET("/devices", func(c *gin.Context) {
			st := ctrl.Status()
			c.JSON(http.StatusOK, gin.H{
				"devices":  st.AvailableDevices,
				"selected": st.SelectedDevice,
			})
		})
		v1.POST("/devices/refresh", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
			defer cancel()
			if err := ctrl.RefreshDevices(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"devices": ctrl.Status().AvailableDevices})
		})
		v1.POST("/devices/:index/select", func(c *gin.Context) {
			selectDevice(c, ctrl)
		})
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pedalbridge",
	})
}

func selectDevice(c *gin.Context, ctrl Controller) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device index must be an integer"})
		return
	}

	var device *contracts.MidiDevice
	for _, d := range ctrl.Status().AvailableDevices {
		if d.Index == index {
			d := d
			device = &d
			break
		}
	}
	if device == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": contracts.ErrUnknownDevice.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	if err := ctrl.SelectDevice(ctx, *device); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	st := ctrl.Status()
	c.JSON(http.StatusOK, gin.H{
		"selected":     st.SelectedDevice,
		"is_connected": st.IsConnected,
	})
}

func requestLogger(logger contracts.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			logger.Field().String("method", c.Request.Method),
			logger.Field().String("path", c.Request.URL.Path),
			logger.Field().Int("status", c.Writer.Status()),
			logger.Field().Duration("latency", time.Since(start)))
	}
}

// Serve runs the API on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler, logger contracts.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("status API listening", logger.Field().String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
