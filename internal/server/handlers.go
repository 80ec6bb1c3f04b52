package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/anyswap-engine/internal/constants"
	"github.com/aman-zulfiqar/anyswap-engine/internal/fpmath"
	"github.com/aman-zulfiqar/anyswap-engine/internal/models"
	"github.com/aman-zulfiqar/anyswap-engine/internal/pool"
	"github.com/aman-zulfiqar/anyswap-engine/internal/store"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Pools              store.PoolStore // Redis-backed authoritative pool state
	Cache              store.OpCache   // recent-ops list and live feed (optional)
	History            store.OpStore   // ClickHouse operation history (optional)
	DevMode            bool            // Enable detailed error responses in development
	Logger             *logrus.Logger  // Structured logger
	DefaultSlippageBps uint16          // Quote slippage when the request omits it
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// opErr maps engine and store errors onto HTTP statuses. Domain errors are
// the caller's problem; an invariant violation is ours and is never
// committed, so it surfaces as a 500 after logging.
func (h *Handlers) opErr(c echo.Context, err error) error {
	var inv *pool.InvariantError
	if errors.As(err, &inv) {
		h.Logger.WithFields(logrus.Fields{
			"pool_id": inv.PoolID,
			"before":  inv.Before,
			"after":   inv.After,
		}).Error("Invariant violation, operation aborted")
		return h.err(c, http.StatusInternalServerError, "invariant violation", nil)
	}
	if fpmath.IsDomainError(err) {
		return h.err(c, http.StatusUnprocessableEntity, err.Error(), nil)
	}
	if errors.Is(err, store.ErrNotFound) {
		return h.err(c, http.StatusNotFound, "pool not found", nil)
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		return h.err(c, http.StatusConflict, "pool already exists", nil)
	}
	if errors.Is(err, store.ErrVersionConflict) {
		return h.err(c, http.StatusConflict, "pool version conflict, retry", nil)
	}
	h.Logger.WithError(err).Error("Operation failed")
	return h.err(c, http.StatusInternalServerError, "internal error", nil)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// mutate runs compute against the current pool state and commits the
// result, retrying on version conflicts. compute must be pure: it is
// re-invoked against a fresh read on every attempt.
func (h *Handlers) mutate(ctx context.Context, poolID string,
	compute func(p *pool.Pool) (*pool.Pool, *models.Operation, error)) (*pool.Pool, error) {

	var lastErr error
	for attempt := 0; attempt < constants.CommitRetries; attempt++ {
		p, err := h.Pools.Get(ctx, poolID)
		if err != nil {
			return nil, err
		}

		next, op, err := compute(p)
		if err != nil {
			return nil, err
		}

		committed, err := h.Pools.Commit(ctx, next, p.Version)
		if err == nil {
			if op != nil {
				op.Version = committed.Version
				h.recordOp(ctx, op)
			}
			return committed, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// recordOp fans a committed operation out to the recent list, the live
// channel and the history store. All three are best-effort: the commit
// already happened and observers must not fail the request.
func (h *Handlers) recordOp(ctx context.Context, op *models.Operation) {
	if h.Cache != nil {
		if err := h.Cache.AddRecentOp(ctx, op); err != nil {
			h.Logger.WithError(err).Warn("Failed to cache operation")
		}
		if err := h.Cache.PublishOp(ctx, op); err != nil {
			h.Logger.WithError(err).Warn("Failed to publish operation")
		}
	}
	if h.History != nil {
		if err := h.History.InsertOp(ctx, op); err != nil {
			h.Logger.WithError(err).Warn("Failed to persist operation history")
		}
	}
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Pools.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{OK: false})
	}
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// PoolCreate creates a new unseeded pool from an asset list.
func (h *Handlers) PoolCreate(c echo.Context) error {
	var req PoolCreateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if len(req.Assets) == 0 {
		return h.err(c, http.StatusBadRequest, "assets are required", map[string]any{"assets": "required"})
	}

	assets := make([]pool.Asset, 0, len(req.Assets))
	for i, spec := range req.Assets {
		mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(spec.Mint))
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"index": i, "mint": spec.Mint})
		}
		assets = append(assets, pool.Asset{Mint: mint, Symbol: spec.Symbol, Weight: spec.Weight})
	}

	feeNum, feeDen := req.FeeNumerator, req.FeeDenominator
	if feeNum == 0 && feeDen == 0 {
		feeNum, feeDen = pool.DefaultFeeNumerator, pool.DefaultFeeDenominator
	}

	id, err := pool.NewID()
	if err != nil {
		return h.opErr(c, err)
	}
	p, err := pool.New(id, assets, feeNum, feeDen)
	if err != nil {
		return h.opErr(c, err)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pools.Create(ctx, p); err != nil {
		return h.opErr(c, err)
	}
	h.recordOp(ctx, &models.Operation{
		PoolID:    p.ID,
		Kind:      models.OpCreatePool,
		Timestamp: time.Now().UTC(),
	})

	return c.JSON(http.StatusCreated, p)
}

// PoolGet retrieves a pool by ID.
func (h *Handlers) PoolGet(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	p, err := h.Pools.Get(ctx, id)
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// PoolList returns every stored pool.
func (h *Handlers) PoolList(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pools, err := h.Pools.List(ctx)
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": pools})
}

// PoolDelete removes a pool.
func (h *Handlers) PoolDelete(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Pools.Delete(ctx, id); err != nil {
		return h.opErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Swap executes a multi-asset swap and commits the post-state.
func (h *Handlers) Swap(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	var req SwapExecuteRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var out *pool.SwapResult
	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		res, err := p.ComputeSwap(pool.SwapRequest{Inputs: req.Inputs, Outputs: req.Outputs})
		if err != nil {
			return nil, nil, err
		}
		out = res

		amountsIn := make([]uint64, len(req.Inputs))
		for i, in := range req.Inputs {
			amountsIn[i] = in.Amount
		}
		op := &models.Operation{
			PoolID:      p.ID,
			Kind:        models.OpSwap,
			Timestamp:   time.Now().UTC(),
			AmountsIn:   amountsIn,
			AmountsOut:  res.AmountsOut,
			Fees:        res.Fees,
			FeeTotal:    res.FeeTotal(),
			NewLPSupply: p.LPSupply,
		}
		return p.ApplySwap(res), op, nil
	})
	if err != nil {
		return h.opErr(c, err)
	}

	return c.JSON(http.StatusOK, SwapResponse{
		Pool:       committed,
		AmountsOut: out.AmountsOut,
		Fees:       out.Fees,
		FeeTotal:   out.FeeTotal(),
	})
}

// LiquidityAdd deposits across every pooled asset and mints LP.
func (h *Handlers) LiquidityAdd(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	var req LiquidityAddRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var out *pool.AddLiquidityResult
	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		res, err := p.ComputeAddLiquidity(req.AmountsIn)
		if err != nil {
			return nil, nil, err
		}
		out = res

		if len(res.RatioWarnings) > 0 {
			h.Logger.WithFields(logrus.Fields{
				"pool_id": p.ID,
				"assets":  res.RatioWarnings,
			}).Warn("Deposit ratio deviates from pool ratio")
		}

		var feeTotal uint64
		for _, f := range res.Fees {
			feeTotal += f
		}
		op := &models.Operation{
			PoolID:      p.ID,
			Kind:        models.OpAddLiquidity,
			Timestamp:   time.Now().UTC(),
			AmountsIn:   req.AmountsIn,
			Fees:        res.Fees,
			FeeTotal:    feeTotal,
			LPDelta:     int64(res.LPMinted),
			NewLPSupply: res.NewLPSupply,
		}
		return p.ApplyAddLiquidity(res), op, nil
	})
	if err != nil {
		return h.opErr(c, err)
	}

	return c.JSON(http.StatusOK, LiquidityAddResponse{
		Pool:          committed,
		LPMinted:      out.LPMinted,
		Fees:          out.Fees,
		RatioWarnings: out.RatioWarnings,
	})
}

// LiquidityRemove burns LP units for a proportional payout.
func (h *Handlers) LiquidityRemove(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	var req LiquidityRemoveRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var out *pool.RemoveLiquidityResult
	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		res, err := p.ComputeRemoveLiquidity(req.LPToBurn)
		if err != nil {
			return nil, nil, err
		}
		out = res

		var feeTotal uint64
		for _, f := range res.Fees {
			feeTotal += f
		}
		op := &models.Operation{
			PoolID:      p.ID,
			Kind:        models.OpRemoveLiquidity,
			Timestamp:   time.Now().UTC(),
			AmountsOut:  res.AmountsOut,
			Fees:        res.Fees,
			FeeTotal:    feeTotal,
			LPDelta:     -int64(req.LPToBurn),
			NewLPSupply: res.NewLPSupply,
		}
		return p.ApplyRemoveLiquidity(res), op, nil
	})
	if err != nil {
		return h.opErr(c, err)
	}

	return c.JSON(http.StatusOK, LiquidityRemoveResponse{
		Pool:       committed,
		AmountsOut: out.AmountsOut,
		Fees:       out.Fees,
	})
}

// AssetAdd appends an asset to a pool.
func (h *Handlers) AssetAdd(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	var req AssetAddRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(req.Mint))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		next, err := p.AddAsset(mint, req.Symbol, req.Weight, req.InitialReserve)
		if err != nil {
			return nil, nil, err
		}
		return next, h.adminOp(p), nil
	})
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, committed)
}

// AssetRemove removes an empty asset from a pool.
func (h *Handlers) AssetRemove(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid asset index", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		next, err := p.RemoveAsset(index)
		if err != nil {
			return nil, nil, err
		}
		return next, h.adminOp(p), nil
	})
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, committed)
}

// FeeUpdate replaces a pool's fee rate.
func (h *Handlers) FeeUpdate(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	var req FeeUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		next, err := p.SetFee(req.FeeNumerator, req.FeeDenominator)
		if err != nil {
			return nil, nil, err
		}
		return next, h.adminOp(p), nil
	})
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, committed)
}

// WeightUpdate replaces one asset's trading weight. Historical invariants
// are never recomputed; the new weight takes effect on the next operation.
func (h *Handlers) WeightUpdate(c echo.Context) error {
	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid asset index", nil)
	}
	var req WeightUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	committed, err := h.mutate(ctx, id, func(p *pool.Pool) (*pool.Pool, *models.Operation, error) {
		next, err := p.SetWeight(index, req.Weight)
		if err != nil {
			return nil, nil, err
		}
		return next, h.adminOp(p), nil
	})
	if err != nil {
		return h.opErr(c, err)
	}
	return c.JSON(http.StatusOK, committed)
}

// RecentOps returns the most recent committed operations with optional limit parameter
func (h *Handlers) RecentOps(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusBadRequest, "operation cache is not configured", nil)
	}

	limitStr := c.QueryParam("limit")
	limit := constants.DefaultOpsLimit
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > constants.MaxRecentOps {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentOps(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get operations", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// PoolOps returns one pool's committed operation history, newest first.
func (h *Handlers) PoolOps(c echo.Context) error {
	if h.History == nil {
		return h.err(c, http.StatusBadRequest, "operation history is not configured", nil)
	}

	id := c.Param("id")
	if err := pool.ValidateID(id); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid pool id", nil)
	}

	limitStr := c.QueryParam("limit")
	limit := constants.DefaultOpsLimit
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > constants.MaxRecentOps {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
		}
		limit = n
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.History.PoolOps(ctx, id, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get operation history", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) adminOp(p *pool.Pool) *models.Operation {
	return &models.Operation{
		PoolID:      p.ID,
		Kind:        models.OpAdmin,
		Timestamp:   time.Now().UTC(),
		NewLPSupply: p.LPSupply,
	}
}
