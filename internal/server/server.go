// Package server exposes the analysis pipeline over a JSON HTTP API:
// upload an assumptions document, get back the analysis, projection,
// sensitivity, or Monte Carlo payload. Finished runs are cached in a
// RunStore so they can be fetched again by run ID.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/alpvest/alpvest/internal/config"
	"github.com/alpvest/alpvest/internal/engine"
	"github.com/alpvest/alpvest/internal/model"
	"github.com/alpvest/alpvest/internal/montecarlo"
	"github.com/alpvest/alpvest/internal/report"
	"github.com/alpvest/alpvest/internal/sensitivity"
	"github.com/alpvest/alpvest/internal/store"
	"github.com/alpvest/alpvest/pkg/constants"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultSweepSteps = 11

type handler struct {
	logger  *zap.Logger
	cfg     *Config
	runs    store.RunStore
	version string
}

// New assembles the router with logging, recovery, CORS, and the Monte
// Carlo rate limiter. A nil logger is replaced with a no-op one.
func New(logger *zap.Logger, cfg *Config, runs store.RunStore, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(recovery(logger))
	router.Use(requestLogger(logger))

	h := &handler{
		logger:  logger,
		cfg:     cfg,
		runs:    runs,
		version: version,
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.MonteCarloRate), cfg.MonteCarloBurst)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.GET("/version", h.handleVersion)
	api.POST("/analysis", h.handleAnalysis)
	api.POST("/projection", h.handleProjection)
	api.POST("/sensitivity", h.handleSensitivity)
	api.POST("/montecarlo", rateLimit(limiter), h.handleMonteCarlo)
	api.GET("/runs/:id", h.handleRun)

	return cors.Default().Handler(router)
}

func (h *handler) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.version})
}

// readAssumptions decodes the request body (YAML or JSON assumptions
// document, size-capped) into the file schema and the model configuration.
// It writes the error response itself and reports success via the bool.
func (h *handler) readAssumptions(c *gin.Context) (*config.Configuration, model.Config, bool) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.UploadSizeBytes())
	data, err := io.ReadAll(body)
	if err != nil {
		h.respondError(c, http.StatusRequestEntityTooLarge, "ASSUMPTIONS_TOO_LARGE", "assumptions document exceeds the upload limit")
		return nil, model.Config{}, false
	}
	if len(data) == 0 {
		h.respondError(c, http.StatusBadRequest, "EMPTY_BODY", "request body must contain an assumptions document")
		return nil, model.Config{}, false
	}

	conf, err := config.ParseConfiguration(data)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_ASSUMPTIONS", err.Error())
		return nil, model.Config{}, false
	}

	cfg, err := conf.BuildModel()
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_ASSUMPTIONS", err.Error())
		return nil, model.Config{}, false
	}

	return conf, cfg, true
}

func (h *handler) handleAnalysis(c *gin.Context) {
	conf, cfg, ok := h.readAssumptions(c)
	if !ok {
		return
	}

	assumptions := conf.Projection.Assumptions()
	annual := engine.Analyze(cfg)
	projection := engine.Project(cfg, assumptions)
	returns := h.returns(cfg, projection, conf)

	export := report.NewAnalysisExport(cfg, annual, projection, returns)
	h.cacheRun(c, export.RunID, export)

	c.JSON(http.StatusOK, gin.H{
		"result":   export,
		"warnings": conf.ValidateConfiguration(),
	})
}

func (h *handler) handleProjection(c *gin.Context) {
	conf, cfg, ok := h.readAssumptions(c)
	if !ok {
		return
	}

	assumptions := conf.Projection.Assumptions()
	if yearsParam := c.Query("years"); yearsParam != "" {
		years, err := strconv.Atoi(yearsParam)
		if err != nil || years < 0 {
			h.respondError(c, http.StatusBadRequest, "INVALID_YEARS", "years must be a non-negative integer")
			return
		}
		assumptions.Years = years
	}

	c.JSON(http.StatusOK, gin.H{
		"assumptions": assumptions,
		"projection":  engine.Project(cfg, assumptions),
		"warnings":    conf.ValidateConfiguration(),
	})
}

func (h *handler) handleSensitivity(c *gin.Context) {
	conf, cfg, ok := h.readAssumptions(c)
	if !ok {
		return
	}

	steps := defaultSweepSteps
	if stepsParam := c.Query("steps"); stepsParam != "" {
		parsed, err := strconv.Atoi(stepsParam)
		if err != nil || parsed < 2 || parsed > 101 {
			h.respondError(c, http.StatusBadRequest, "INVALID_STEPS", "steps must be an integer between 2 and 101")
			return
		}
		steps = parsed
	}

	runner := sensitivity.NewRunner(h.logger, cfg, conf.Projection.Assumptions(),
		conf.Projection.DiscountRate, conf.Projection.SellingCostsRate)

	export := report.NewSensitivityExport(runner.Sweep(steps), runner.BreakEven())
	h.cacheRun(c, export.RunID, export)

	c.JSON(http.StatusOK, gin.H{
		"result":   export,
		"warnings": conf.ValidateConfiguration(),
	})
}

func (h *handler) handleMonteCarlo(c *gin.Context) {
	conf, cfg, ok := h.readAssumptions(c)
	if !ok {
		return
	}

	simulations := constants.DefaultSimulations
	if simParam := c.Query("simulations"); simParam != "" {
		parsed, err := strconv.Atoi(simParam)
		if err != nil || parsed < 1 || parsed > constants.MaxServerSimulations {
			h.respondError(c, http.StatusBadRequest, "INVALID_SIMULATIONS",
				"simulations must be an integer between 1 and "+strconv.Itoa(constants.MaxServerSimulations))
			return
		}
		simulations = parsed
	}

	seed := time.Now().UnixNano()
	if seedParam := c.Query("seed"); seedParam != "" {
		parsed, err := strconv.ParseInt(seedParam, 10, 64)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "INVALID_SEED", "seed must be an integer")
			return
		}
		seed = parsed
	}

	result, err := montecarlo.Run(h.logger, cfg, montecarlo.DefaultDistributions(cfg), montecarlo.Options{
		Simulations:      simulations,
		Seed:             seed,
		Assumptions:      conf.Projection.Assumptions(),
		SellingCostsRate: conf.Projection.SellingCostsRate,
	})
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "INVALID_DISTRIBUTIONS", err.Error())
		return
	}

	export := report.NewMonteCarloExport(result)
	h.cacheRun(c, export.RunID, export)

	c.JSON(http.StatusOK, gin.H{
		"result":   export,
		"warnings": conf.ValidateConfiguration(),
	})
}

func (h *handler) handleRun(c *gin.Context) {
	id := c.Param("id")
	payload, ok := h.runs.Get(c.Request.Context(), id)
	if !ok {
		h.respondError(c, http.StatusNotFound, "RUN_NOT_FOUND", "no cached run with that id")
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(payload))
}

// returns derives the terminal-sale metrics for a projection, or a zero
// record for an empty horizon.
func (h *handler) returns(cfg model.Config, projection []engine.YearSnapshot, conf *config.Configuration) engine.ReturnMetrics {
	if len(projection) == 0 {
		return engine.ReturnMetrics{}
	}
	last := projection[len(projection)-1]
	return engine.Returns(projection, engine.ReturnInput{
		InitialEquityPerOwner: cfg.Financing.EquityPerOwner(),
		FinalPropertyValue:    last.PropertyValue,
		FinalLoanBalance:      last.RemainingLoanBalance,
		NumOwners:             cfg.Financing.NumOwners,
		PurchasePrice:         cfg.Financing.PurchasePrice,
		SellingCostsRate:      conf.Projection.SellingCostsRate,
		DiscountRate:          conf.Projection.DiscountRate,
	})
}

// cacheRun stores a finished payload under its run ID. Cache failures are
// logged and otherwise ignored; the response still carries the payload.
func (h *handler) cacheRun(c *gin.Context, runID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to marshal run for cache",
			zap.String("op", "server.cacheRun"),
			zap.String("runId", runID),
			zap.Error(err),
		)
		return
	}
	if err := h.runs.Set(c.Request.Context(), runID, string(data)); err != nil {
		h.logger.Warn("failed to cache run",
			zap.String("op", "server.cacheRun"),
			zap.String("runId", runID),
			zap.Error(err),
		)
	}
}

func (h *handler) respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
