// Package router lắp ráp toàn bộ route của ứng dụng lên Fiber app.
package router

import (
	"time"

	"github.com/gofiber/fiber/v3"

	bucketrouter "comm_tracker/internal/api/bucket/router"
	campaignrouter "comm_tracker/internal/api/campaign/router"
	schedulerouter "comm_tracker/internal/api/schedule/router"
	"comm_tracker/internal/logger"
)

// SetupRoutes đăng ký health check và tất cả route domain dưới /api/v1.
//
// Parameters:
// - app: Fiber app đã khởi tạo middleware
//
// Returns:
// - error: Lỗi nếu một domain không đăng ký được (thiếu collection trong registry)
func SetupRoutes(app *fiber.App) error {
	// Health check - nằm ngoài v1, không qua rate limit
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := app.Group("/api/v1")

	if err := bucketrouter.Register(v1); err != nil {
		return err
	}
	if err := campaignrouter.Register(v1); err != nil {
		return err
	}
	if err := schedulerouter.Register(v1); err != nil {
		return err
	}

	logger.GetAppLogger().Info("Registered all API routes")
	return nil
}
