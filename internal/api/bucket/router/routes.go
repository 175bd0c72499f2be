// Package router đăng ký các route thuộc domain bucket: day bucket CRUD, event status.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	buckethdl "comm_tracker/internal/api/bucket/handler"
)

// Register đăng ký tất cả route bucket lên v1.
func Register(v1 fiber.Router) error {
	handler, err := buckethdl.NewDayBucketHandler()
	if err != nil {
		return fmt.Errorf("tạo DayBucketHandler: %w", err)
	}

	group := v1.Group("/communications")

	// GET /communications/:userId/day/:day — đọc bucket một ngày (rỗng nếu chưa có)
	group.Get("/:userId/day/:day", handler.HandleGetDay)

	// POST /communications/:userId/day/:day — append events vào bucket
	group.Post("/:userId/day/:day", handler.HandleAppendEvents)

	// PUT /communications/:userId/day/:day — thay thế toàn bộ events của ngày
	group.Put("/:userId/day/:day", handler.HandleReplaceDay)

	// PATCH /communications/:userId/status — cập nhật status một event đã gửi
	group.Patch("/:userId/status", handler.HandleUpdateEventStatus)

	return nil
}
