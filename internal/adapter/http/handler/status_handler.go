package handler

import (
	"chain-connector/internal/adapter/http/dto"
	"chain-connector/internal/core/domain"
	"chain-connector/internal/core/ports"
	"chain-connector/pkg/apperror"
	"chain-connector/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatusHandler serves the read-only connector endpoints.
type StatusHandler struct {
	connector ports.ConnectorStatus
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(connector ports.ConnectorStatus) *StatusHandler {
	return &StatusHandler{connector: connector}
}

// GetAccount handles GET /api/v1/account.
func (h *StatusHandler) GetAccount(c *gin.Context) {
	var q dto.UnitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.ErrInvalidArgument(err.Error()))
		return
	}

	balance, err := h.connector.AccountBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	formatted, err := balance.Format(q.DisplayUnit())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AccountResponse{
		AccountID: h.connector.AccountID().String(),
		Provider:  h.connector.Provider(),
		Strategy:  h.connector.Strategy(),
		Balance:   formatted,
		Unit:      string(q.DisplayUnit()),
	})
}

// ListChannels handles GET /api/v1/channels.
func (h *StatusHandler) ListChannels(c *gin.Context) {
	var q dto.UnitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.ErrInvalidArgument(err.Error()))
		return
	}

	channels := h.connector.Channels()
	items := make([]dto.ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		item, err := dto.NewChannelResponse(ch, q.DisplayUnit())
		if err != nil {
			response.Error(c, err)
			return
		}
		items = append(items, item)
	}

	response.OK(c, dto.ChannelListResponse{Items: items, Total: len(items)})
}

// GetChannel handles GET /api/v1/channels/:counterparty?epoch=N.
func (h *StatusHandler) GetChannel(c *gin.Context) {
	var uri dto.ChannelURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, apperror.ErrInvalidArgument("counterparty must be a hex account id"))
		return
	}
	var q dto.ChannelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.ErrInvalidArgument(err.Error()))
		return
	}

	counterparty, err := domain.ParseAccountID(uri.Counterparty)
	if err != nil {
		response.Error(c, err)
		return
	}

	ch, err := h.connector.ChannelStatus(c.Request.Context(), counterparty, q.Epoch)
	if err != nil {
		response.Error(c, err)
		return
	}
	resp, err := dto.NewChannelResponse(ch, q.DisplayUnit())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resp)
}
