// Package buckethdl - Handler bucket event theo ngày.
package buckethdl

import (
	"fmt"

	basehdl "comm_tracker/internal/api/base/handler"
	bucketdto "comm_tracker/internal/api/bucket/dto"
	bucketmodels "comm_tracker/internal/api/bucket/models"
	bucketsvc "comm_tracker/internal/api/bucket/service"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"
	"comm_tracker/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// DayBucketHandler xử lý các route đọc/ghi bucket theo ngày.
type DayBucketHandler struct {
	BucketService *bucketsvc.DayBucketService
}

// NewDayBucketHandler tạo DayBucketHandler mới.
func NewDayBucketHandler() (*DayBucketHandler, error) {
	svc, err := bucketsvc.NewDayBucketService()
	if err != nil {
		return nil, fmt.Errorf("tạo DayBucketService: %w", err)
	}
	return &DayBucketHandler{BucketService: svc}, nil
}

// parsePathParams parse cặp (userId, day) từ path, trả về lỗi đã ghi response nếu không hợp lệ.
func parsePathParams(c fiber.Ctx) (int64, int64, bool) {
	userID, err := bucketdto.ParseUserID(c.Params("userId"))
	if err != nil {
		c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"code": common.ErrCodeValidationFormat.Code, "message": "userId không hợp lệ", "status": "error",
		})
		return 0, 0, false
	}
	day, err := bucketdto.ParseDay(c.Params("day"))
	if err != nil {
		c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"code": common.ErrCodeValidationFormat.Code, "message": "day không hợp lệ (dạng YYYY-MM-DD hoặc epoch millis)", "status": "error",
		})
		return 0, 0, false
	}
	return userID, day, true
}

// toCommEvents chuyển danh sách EventInput thành CommEvent.
func toCommEvents(inputs []bucketdto.EventInput) []bucketmodels.CommEvent {
	events := make([]bucketmodels.CommEvent, 0, len(inputs))
	for _, in := range inputs {
		events = append(events, bucketmodels.CommEvent{
			DispatchTime: in.DispatchTime,
			TemplateID:   in.TemplateID,
			TrackingID:   in.TrackingID,
			ContentScore: in.ContentScore,
			Status:       in.Status,
		})
	}
	return events
}

// HandleGetDay xử lý GET /communications/:userId/day/:day.
func (h *DayBucketHandler) HandleGetDay(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		userID, day, ok := parsePathParams(c)
		if !ok {
			return nil
		}

		bucket, err := h.BucketService.GetDay(c.Context(), userID, day)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi truy vấn day bucket")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, bucket, nil)
		return nil
	})
}

// HandleAppendEvents xử lý POST /communications/:userId/day/:day.
func (h *DayBucketHandler) HandleAppendEvents(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		userID, day, ok := parsePathParams(c)
		if !ok {
			return nil
		}

		var input bucketdto.AppendEventsInput
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu event không hợp lệ", "details": err.Error(), "status": "error",
			})
			return nil
		}

		if err := h.BucketService.AppendEvents(c.Context(), userID, input.UserType, day, toCommEvents(input.Events)); err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi append events vào day bucket")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"appended": len(input.Events)}, nil)
		return nil
	})
}

// HandleReplaceDay xử lý PUT /communications/:userId/day/:day.
func (h *DayBucketHandler) HandleReplaceDay(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		userID, day, ok := parsePathParams(c)
		if !ok {
			return nil
		}

		var input bucketdto.ReplaceDayInput
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu event không hợp lệ", "details": err.Error(), "status": "error",
			})
			return nil
		}

		if err := h.BucketService.ReplaceDay(c.Context(), userID, input.UserType, day, toCommEvents(input.Events)); err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi replace day bucket")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"eventCount": len(input.Events)}, nil)
		return nil
	})
}

// HandleUpdateEventStatus xử lý PATCH /communications/:userId/status.
func (h *DayBucketHandler) HandleUpdateEventStatus(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		userID, err := bucketdto.ParseUserID(c.Params("userId"))
		if err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "userId không hợp lệ", "status": "error",
			})
			return nil
		}

		var input bucketdto.UpdateEventStatusInput
		if err := c.Bind().Body(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationFormat.Code, "message": "Dữ liệu gửi lên không đúng định dạng JSON", "status": "error",
			})
			return nil
		}
		if err := global.Validate.Struct(&input); err != nil {
			c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"code": common.ErrCodeValidationInput.Code, "message": "Dữ liệu cập nhật status không hợp lệ", "details": err.Error(), "status": "error",
			})
			return nil
		}

		matched, err := h.BucketService.UpdateEventStatus(
			c.Context(), userID, input.DispatchTime, input.TemplateID, input.TrackingID, input.Status,
		)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi cập nhật event status")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, fiber.Map{"matched": matched}, nil)
		return nil
	})
}
