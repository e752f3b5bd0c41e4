package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/switchcollectorpro/switchcollectorpro/internal/database"
	"github.com/switchcollectorpro/switchcollectorpro/internal/service"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/cache"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

// CollectorHandler 采集器处理器
type CollectorHandler struct {
	poller *service.PollerService
}

// NewCollectorHandler 创建采集器处理器
func NewCollectorHandler(poller *service.PollerService) *CollectorHandler {
	return &CollectorHandler{poller: poller}
}

// Health 健康检查
// @Summary 服务与数据库健康状态
// @Tags collector
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/health [get]
func (h *CollectorHandler) Health(c *gin.Context) {
	st := h.poller.Status()
	data := gin.H{"poller_running": st.Running, "database": "disabled"}

	if database.GetDB() != nil {
		if err := database.Health(); err != nil {
			data["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Code:    "DATABASE_UNAVAILABLE",
				Message: "数据库不可用",
				Data:    data,
			})
			return
		}
		data["database"] = "ok"
		data["database_stats"] = database.GetStats()
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Message: "服务正常", Data: data})
}

// Snapshot 最近一次成功采集的对外映射
// @Summary 最新快照（含过期状态）
// @Tags collector
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/snapshot [get]
func (h *CollectorHandler) Snapshot(c *gin.Context) {
	st := h.poller.Status()
	latest := h.poller.Latest()
	if latest == nil {
		cached, err := h.poller.CachedSnapshot(c.Request.Context())
		if err == nil {
			c.JSON(http.StatusOK, SuccessResponse{
				Code:    "SUCCESS",
				Message: "获取成功（缓存）",
				Data: gin.H{
					"stale":    true,
					"terminal": st.Terminal,
					"source":   "cache",
					"snapshot": cached,
				},
			})
			return
		}
		if !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, service.ErrNoCachedSnapshot) {
			logger.WithError(err).Warn("Failed to read cached snapshot")
		}
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "NO_SNAPSHOT",
			Message: "尚无成功的采集",
			Data:    st,
		})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    "SUCCESS",
		Message: "获取成功",
		Data: gin.H{
			"stale":    st.Stale,
			"terminal": st.Terminal,
			"snapshot": latest,
		},
	})
}

// Status 轮询状态
// @Router /api/v1/status [get]
func (h *CollectorHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Message: "获取成功", Data: h.poller.Status()})
}

// PollNow 立即采集；与进行中的采集合并
// @Router /api/v1/poll [post]
func (h *CollectorHandler) PollNow(c *gin.Context) {
	out, err := h.poller.PollNow(c.Request.Context())
	if err != nil {
		h.pollError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Message: "采集完成", Data: out})
}

// Energy 端口累计能耗
// @Router /api/v1/energy [get]
func (h *CollectorHandler) Energy(c *gin.Context) {
	ledger := h.poller.Ledger()
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    "SUCCESS",
		Message: "获取成功",
		Data: gin.H{
			"port_energy_kwh":  ledger.Totals(),
			"poe_energy_total": ledger.Total(),
		},
	})
}

// PortDevices 端口下的终端；端口名中的 '/' 需编码为 %2F
// @Router /api/v1/ports/{name}/devices [get]
func (h *CollectorHandler) PortDevices(c *gin.Context) {
	port := service.NormalizePortName(c.Param("name"))
	latest := h.poller.Latest()
	if latest == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: "NO_SNAPSHOT", Message: "尚无成功的采集"})
		return
	}
	devices := latest.PortDevices[port]
	if devices == nil {
		devices = []service.PortDevice{}
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    "SUCCESS",
		Message: "获取成功",
		Data:    gin.H{"port": port, "devices": devices},
	})
}

// Devices 已见终端集合
// @Router /api/v1/devices [get]
func (h *CollectorHandler) Devices(c *gin.Context) {
	list := h.poller.Devices().List()
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    "SUCCESS",
		Message: "获取成功",
		Data:    gin.H{"total": len(list), "devices": list},
	})
}

// History 最近的采集记录
// @Param limit query int false "条数，默认 50"
// @Router /api/v1/history [get]
func (h *CollectorHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.poller.History().Recent(limit)
	if err != nil {
		logger.WithError(err).Error("Failed to query poll history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "QUERY_FAILED", Message: "查询采集记录失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    "SUCCESS",
		Message: "获取成功",
		Data:    gin.H{"total": len(records), "records": records},
	})
}

// HistoryDetail 单条采集记录及其快照
// @Router /api/v1/history/{id} [get]
func (h *CollectorHandler) HistoryDetail(c *gin.Context) {
	rec, err := h.poller.History().Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Code: "RECORD_NOT_FOUND", Message: "采集记录不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "QUERY_FAILED", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    "SUCCESS",
		Message: "获取成功",
		Data:    gin.H{"record": rec, "snapshot": jsonRaw(rec.Snapshot)},
	})
}

// TestConnectionRequest 连接测试参数，空字段使用配置中的交换机
type TestConnectionRequest struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TestConnection 连接测试：登录后立即断开
// @Router /api/v1/test [post]
func (h *CollectorHandler) TestConnection(c *gin.Context) {
	var req TestConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_PARAMS", Message: "请求参数无效: " + err.Error()})
		return
	}
	err := h.poller.TestConnection(c.Request.Context(), &service.Credentials{
		Host:     strings.TrimSpace(req.Host),
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
	})
	if errors.Is(err, service.ErrCredentialsRequired) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "CREDENTIALS_REQUIRED", Message: err.Error()})
		return
	}
	if err != nil {
		h.pollError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: "SUCCESS", Message: "连接成功"})
}

// pollError 连接/认证失败与取消分别返回不同的错误码
func (h *CollectorHandler) pollError(c *gin.Context, err error) {
	pe, ok := service.AsPollError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "POLL_FAILED", Message: err.Error()})
		return
	}
	status := http.StatusBadGateway
	if !pe.Terminal() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, ErrorResponse{
		Code:    strings.ToUpper(string(pe.Kind)),
		Message: pe.Error(),
		Data:    gin.H{"terminal": pe.Terminal()},
	})
}

type jsonRaw string

func (j jsonRaw) MarshalJSON() ([]byte, error) {
	if j == "" {
		return []byte("null"), nil
	}
	return []byte(j), nil
}
