package http

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"go.uber.org/fx"

	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/pkg/httputil"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	client   domain.TelegramClient
	producer domain.EventProducer
	logger   zerolog.Logger
}

// HealthHandlerParams defines parameters for HealthHandler with optional dependencies
type HealthHandlerParams struct {
	fx.In

	Client   domain.TelegramClient
	Producer domain.EventProducer `optional:"true"`
	Logger   zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(params HealthHandlerParams) *HealthHandler {
	return &HealthHandler{
		client:   params.Client,
		producer: params.Producer,
		logger:   params.Logger,
	}
}

// Handle handles the health check request for fasthttp
func (h *HealthHandler) Handle(ctx *fasthttp.RequestCtx) {
	components := h.checkComponents()
	status := h.determineOverallStatus(components)

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	}

	logEvent := h.logger.Debug()
	if status == HealthStatusUnhealthy {
		logEvent = h.logger.Warn()
	} else if status == HealthStatusDegraded {
		logEvent = h.logger.Info()
	}
	logEvent.
		Str("status", string(status)).
		Interface("components", components).
		Msg("Health check completed")

	httputil.WriteHealthResponse(ctx, response, status != HealthStatusUnhealthy)
}

func (h *HealthHandler) checkComponents() []ComponentHealth {
	components := make([]ComponentHealth, 0, 2)

	// Check Telegram connection
	connected := h.client != nil && h.client.IsConnected()
	connectedMsg := ""
	if !connected {
		connectedMsg = "Not connected to Telegram"
	}
	components = append(components, ComponentHealth{
		Name:    "telegram_connection",
		Healthy: connected,
		Message: connectedMsg,
	})

	// Check Kafka producer when configured
	if h.producer != nil {
		producerHealthy := h.producer.IsHealthy()
		producerMsg := ""
		if !producerHealthy {
			producerMsg = "Kafka producer is not healthy"
		}
		components = append(components, ComponentHealth{
			Name:    "kafka_producer",
			Healthy: producerHealthy,
			Message: producerMsg,
		})
	}

	return components
}

// determineOverallStatus determines overall health status based on component health.
// The Telegram connection is the load-bearing component: without it the
// service cannot answer any enumeration request.
func (h *HealthHandler) determineOverallStatus(components []ComponentHealth) HealthStatus {
	allHealthy := true
	telegramHealthy := false

	for _, component := range components {
		if !component.Healthy {
			allHealthy = false
		}
		if component.Name == "telegram_connection" && component.Healthy {
			telegramHealthy = true
		}
	}

	if allHealthy {
		return HealthStatusHealthy
	}
	if telegramHealthy {
		return HealthStatusDegraded
	}
	return HealthStatusUnhealthy
}
