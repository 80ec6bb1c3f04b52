package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
)

// Quote prices a swap against the current pool state without committing
// anything. The response carries a slippage-adjusted minimum output the
// caller can pin when executing.
func (h *Handlers) Quote(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	slippageBps := h.DefaultSlippageBps
	if req.SlippageBps != nil {
		if *req.SlippageBps > 10000 {
			return h.err(c, http.StatusBadRequest, "invalid slippage_bps", map[string]any{"slippage_bps": "max 10000"})
		}
		slippageBps = *req.SlippageBps
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	p, err := h.Pools.Get(ctx, id)
	if err != nil {
		return h.opErr(c, err)
	}

	quote, err := p.QuoteSwap(pool.SwapRequest{Inputs: req.Inputs, Outputs: req.Outputs}, slippageBps)
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}
