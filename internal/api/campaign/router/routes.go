// Package router đăng ký các route thuộc domain campaign.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	campaignhdl "comm_tracker/internal/api/campaign/handler"
)

// Register đăng ký tất cả route campaign lên v1.
func Register(v1 fiber.Router) error {
	handler, err := campaignhdl.NewCampaignScanHandler()
	if err != nil {
		return fmt.Errorf("tạo CampaignScanHandler: %w", err)
	}

	group := v1.Group("/campaigns")

	// GET /campaigns/distinct-users — quét distinct user của một campaign theo khung giờ,
	// phân trang keyset. Query: trackingId, templateId, day, hour, pageSize, cursor
	group.Get("/distinct-users", handler.HandleDistinctUsers)

	return nil
}
