// Package campaignhdl - Handler quét distinct user theo campaign.
package campaignhdl

import (
	"fmt"
	"strconv"

	basehdl "comm_tracker/internal/api/base/handler"
	campaigndto "comm_tracker/internal/api/campaign/dto"
	campaignsvc "comm_tracker/internal/api/campaign/service"
	"comm_tracker/internal/common"
	"comm_tracker/internal/global"
	"comm_tracker/internal/logger"

	"github.com/gofiber/fiber/v3"
)

// CampaignScanHandler xử lý route quét distinct user.
type CampaignScanHandler struct {
	ScanService *campaignsvc.CampaignScanService
}

// NewCampaignScanHandler tạo CampaignScanHandler mới.
func NewCampaignScanHandler() (*CampaignScanHandler, error) {
	svc, err := campaignsvc.NewCampaignScanService()
	if err != nil {
		return nil, fmt.Errorf("tạo CampaignScanService: %w", err)
	}
	return &CampaignScanHandler{ScanService: svc}, nil
}

// parseQueryInt64 parse một query param kiểu int64, trả về defaultVal nếu vắng mặt.
func parseQueryInt64(c fiber.Ctx, key string, defaultVal int64) (int64, error) {
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

// HandleDistinctUsers xử lý GET /campaigns/distinct-users.
// Query: trackingId, templateId, day (epoch millis), hour, pageSize, cursor.
func (h *CampaignScanHandler) HandleDistinctUsers(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		query := campaigndto.DistinctUsersQuery{
			TrackingID: c.Query("trackingId"),
			TemplateID: c.Query("templateId"),
		}

		var err error
		if query.Day, err = parseQueryInt64(c, "day", 0); err == nil {
			var hour int64
			if hour, err = parseQueryInt64(c, "hour", 0); err == nil {
				query.Hour = int(hour)
				if query.PageSize, err = parseQueryInt64(c, "pageSize", 0); err == nil {
					query.Cursor, err = parseQueryInt64(c, "cursor", 0)
				}
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
				"code": common.ErrCodeValidationInput.Code, "message": "Thiếu hoặc sai tham số quét", "details": err.Error(), "status": "error",
			})
			return nil
		}

		userIDs, nextCursor, hasMore, err := h.ScanService.DistinctUsers(
			c.Context(), query.TrackingID, query.TemplateID, query.Day, query.Hour, query.PageSize, query.Cursor,
		)
		if err != nil {
			logger.WithRequest(c).WithError(err).Error("Lỗi quét distinct users")
			basehdl.HandleResponse(c, nil, err)
			return nil
		}

		basehdl.HandleResponse(c, campaigndto.DistinctUsersResponse{
			UserIDs:    userIDs,
			NextCursor: nextCursor,
			HasMore:    hasMore,
			Total:      -1,
			TotalPage:  -1,
		}, nil)
		return nil
	})
}
