package logger

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// FilterHook là một hook để lọc log entries dựa trên các tiêu chí:
// - Service (app, error, performance)
// - Log Type (trace, debug, info, warn, error, fatal)
// Entry bị lọc sẽ được đánh dấu bằng field "_filtered" để AsyncHook bỏ qua khi ghi.
type FilterHook struct {
	// Các filter sets (map[string]bool để lookup nhanh)
	// Nếu map rỗng hoặc "*" trong config, cho phép tất cả
	allowedServices map[string]bool
	allowedLogTypes map[string]bool

	// Flags để kiểm tra xem có filter nào được bật không
	hasServiceFilter bool
	hasLogTypeFilter bool

	mu sync.RWMutex
}

// NewFilterHook tạo một filter hook mới với cấu hình
func NewFilterHook(cfg *LogConfig) *FilterHook {
	hook := &FilterHook{
		allowedServices: make(map[string]bool),
		allowedLogTypes: make(map[string]bool),
	}

	// Parse và set filters từ config
	hook.updateFilters(cfg)

	return hook
}

// updateFilters cập nhật filters từ config
func (h *FilterHook) updateFilters(cfg *LogConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.allowedServices = parseFilter(cfg.FilterServices)
	h.hasServiceFilter = len(h.allowedServices) > 0 && !h.allowedServices["*"]

	h.allowedLogTypes = parseFilter(cfg.FilterLogTypes)
	h.hasLogTypeFilter = len(h.allowedLogTypes) > 0 && !h.allowedLogTypes["*"]
}

// parseFilter chuyển chuỗi phân cách bởi dấu phẩy thành set
func parseFilter(value string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(strings.ToLower(item))
		if item != "" {
			result[item] = true
		}
	}
	return result
}

// Levels trả về các log levels mà hook này xử lý
func (h *FilterHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire đánh dấu entry bị filter thay vì chặn trực tiếp
// (logrus không cho hook hủy entry, nên dùng field "_filtered" làm tín hiệu)
func (h *FilterHook) Fire(entry *logrus.Entry) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.hasServiceFilter {
		service, _ := entry.Data["service"].(string)
		if service != "" && !h.allowedServices[strings.ToLower(service)] {
			entry.Data["_filtered"] = true
			return nil
		}
	}

	if h.hasLogTypeFilter {
		if !h.allowedLogTypes[entry.Level.String()] {
			entry.Data["_filtered"] = true
			return nil
		}
	}

	return nil
}
