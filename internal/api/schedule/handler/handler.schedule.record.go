// Package schedulehdl - Handler schedule record phẳng.
package schedulehdl

import (
	"fmt"
	"strconv"

	basehdl "comm_tracker/internal/api/base/handler"
	scheduledto "comm_tracker/internal/api/schedule/dto"
	schedulesvc "comm_tracker/internal/api/schedule/service"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"
	"comm_tracker/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// ScheduleHandler xử lý các route schedule record.
type ScheduleHandler struct {
	ScheduleService *schedulesvc.ScheduleService
}

// NewScheduleHandler tạo ScheduleHandler mới.
func NewScheduleHandler() (*ScheduleHandler, error) {
	svc, err := schedulesvc.NewScheduleService()
	if err != nil {
		return nil, fmt.Errorf("tạo ScheduleService: %w", err)
	}
	return &ScheduleHandler{ScheduleService: svc}, nil
}

// parseUserIDParam parse path param userId, yêu cầu số nguyên dương.
func parseUserIDParam(c fiber.Ctx) (int64, error) {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, common.ErrInvalidFormat
	}
	return userID, nil
}

// queryInt64 parse một query param kiểu int64, trả về defaultVal nếu vắng mặt.
func queryInt64(c fiber.Ctx, key string, defaultVal int64) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidFormat
	}
	return v, nil
}

// HandleUpsertRecord xử lý POST /schedules.
func (h *ScheduleHandler) HandleUpsertRecord(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input scheduledto.ScheduleUpsertInput
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu schedule không hợp lệ", "details": err.Error(), "status": "error",
			})
			return nil
		}

		record, err := h.ScheduleService.UpsertRecord(c.Context(), &input)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi upsert schedule record")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, record, nil)
		return nil
	})
}

// HandleMarkSent xử lý PATCH /schedules/sent.
func (h *ScheduleHandler) HandleMarkSent(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input scheduledto.RecordKeyInput
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu định danh record", "details": err.Error(), "status": "error",
			})
			return nil
		}

		matched, err := h.ScheduleService.MarkSent(c.Context(), input.UserID, input.TrackingID, input.TemplateID)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi đánh dấu đã gửi")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"matched": matched}, nil)
		return nil
	})
}

// HandleDeleteRecord xử lý DELETE /schedules.
func (h *ScheduleHandler) HandleDeleteRecord(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input scheduledto.RecordKeyInput
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu định danh record", "details": err.Error(), "status": "error",
			})
			return nil
		}

		if err := h.ScheduleService.DeleteRecord(c.Context(), input.UserID, input.TrackingID, input.TemplateID); err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi hủy schedule record")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, nil, nil)
		return nil
	})
}

// HandleListRecords xử lý GET /schedules.
// Query: page, limit.
func (h *ScheduleHandler) HandleListRecords(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		page, errPage := queryInt64(c, "page", 1)
		limit, errLimit := queryInt64(c, "limit", 0)
		if errPage != nil || errLimit != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Query param không hợp lệ", "status": "error",
			})
			return nil
		}

		result, err := h.ScheduleService.ListRecords(c.Context(), page, limit)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi liệt kê schedule records")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, result, nil)
		return nil
	})
}

// HandleGetEligibleRecords xử lý GET /schedules/user/:userId.
// Query: limit.
func (h *ScheduleHandler) HandleGetEligibleRecords(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		userID, err := parseUserIDParam(c)
		if err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "userId không hợp lệ", "status": "error",
			})
			return nil
		}
		limit, err := queryInt64(c, "limit", 0)
		if err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "limit không hợp lệ", "status": "error",
			})
			return nil
		}

		records, err := h.ScheduleService.GetEligibleRecords(c.Context(), userID, limit)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi truy vấn schedule records")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, records, nil)
		return nil
	})
}

// HandleGetScheduleSegment xử lý GET /schedules/segment.
// Query: trackingId, templateId, plannedDateHour, pageSize, cursor.
func (h *ScheduleHandler) HandleGetScheduleSegment(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		query := scheduledto.SegmentQuery{
			TrackingID: c.Query("trackingId"),
			TemplateID: c.Query("templateId"),
		}

		var err error
		if query.PlannedDateHour, err = queryInt64(c, "plannedDateHour", 0); err == nil {
			if query.PageSize, err = queryInt64(c, "pageSize", 0); err == nil {
				query.Cursor, err = queryInt64(c, "cursor", 0)
			}
		}
		if err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Query param không hợp lệ", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&query); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu hoặc sai tham số segment", "details": err.Error(), "status": "error",
			})
			return nil
		}

		userIDs, nextCursor, hasMore, err := h.ScheduleService.GetScheduleSegment(
			c.Context(), query.TrackingID, query.TemplateID, query.PlannedDateHour, query.PageSize, query.Cursor,
		)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi truy vấn schedule segment")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, scheduledto.SegmentResponse{
			UserIDs:    userIDs,
			NextCursor: nextCursor,
			HasMore:    hasMore,
		}, nil)
		return nil
	})
}

// HandleGetUserSchedule xử lý GET /schedules/user/:userId/ranked.
// Query: start, end (epoch millis, inclusive).
func (h *ScheduleHandler) HandleGetUserSchedule(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		userID, err := parseUserIDParam(c)
		if err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "userId không hợp lệ", "status": "error",
			})
			return nil
		}

		start, errStart := queryInt64(c, "start", 0)
		end, errEnd := queryInt64(c, "end", 0)
		if errStart != nil || errEnd != nil || start <= 0 || end <= 0 || end < start {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Khoảng giờ [start, end] không hợp lệ", "status": "error",
			})
			return nil
		}

		records, err := h.ScheduleService.GetUserSchedule(c.Context(), userID, start, end)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi truy vấn lịch xếp hạng")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, records, nil)
		return nil
	})
}
