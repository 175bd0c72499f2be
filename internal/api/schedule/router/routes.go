// Package router đăng ký các route thuộc domain schedule.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	schedulehdl "comm_tracker/internal/api/schedule/handler"
)

// Register đăng ký tất cả route schedule lên v1.
func Register(v1 fiber.Router) error {
	handler, err := schedulehdl.NewScheduleHandler()
	if err != nil {
		return fmt.Errorf("tạo ScheduleHandler: %w", err)
	}

	group := v1.Group("/schedules")

	// GET /schedules — liệt kê record theo trang (rà soát vận hành).
	// Query: page, limit
	group.Get("/", handler.HandleListRecords)

	// POST /schedules — upsert một schedule record theo composite key
	group.Post("/", handler.HandleUpsertRecord)

	// DELETE /schedules — hủy lịch của một tổ hợp user/campaign/template
	group.Delete("/", handler.HandleDeleteRecord)

	// PATCH /schedules/sent — đánh dấu record đã gửi
	group.Patch("/sent", handler.HandleMarkSent)

	// GET /schedules/segment — một trang userId của một đợt gửi (keyset).
	// Query: trackingId, templateId, plannedDateHour, pageSize, cursor
	group.Get("/segment", handler.HandleGetScheduleSegment)

	// GET /schedules/user/:userId — các record của user, bounded. Query: limit
	group.Get("/user/:userId", handler.HandleGetEligibleRecords)

	// GET /schedules/user/:userId/ranked — lịch theo khoảng giờ, xếp finalScore giảm dần.
	// Query: start, end
	group.Get("/user/:userId/ranked", handler.HandleGetUserSchedule)

	return nil
}
