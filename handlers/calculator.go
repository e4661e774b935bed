package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shmboard/models"
	"shmboard/services"
)

// CalculatorHandlers serves reward estimates
type CalculatorHandlers struct {
	calcService *services.CalculatorService
}

func NewCalculatorHandlers(calcService *services.CalculatorService) *CalculatorHandlers {
	return &CalculatorHandlers{
		calcService: calcService,
	}
}

// Estimate godoc
// @Summary Estimate validator rewards
// @Description Accepts query parameters (GET) or an EstimatorInput JSON body (POST)
// @Tags calculator
// @Produce json
// @Success 200 {object} models.CalculationResult
// @Failure 400 {object} ErrorResponse
// @Router /api/calculator/estimate [get]
func (ch *CalculatorHandlers) Estimate(c echo.Context) error {
	var (
		in  models.EstimatorInput
		err error
	)
	if c.Request().Method == http.MethodPost {
		err = bindEstimatorBody(c, &in)
	} else {
		err = parseEstimatorQuery(c, &in)
	}
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.JSON(http.StatusOK, ch.calcService.Calculate(c.Request().Context(), in))
}

func bindEstimatorBody(c echo.Context, in *models.EstimatorInput) error {
	if err := c.Bind(in); err != nil {
		return fmt.Errorf("invalid request body")
	}
	return normalizeEnums(in, string(in.NodeCurrency), string(in.RunningCurrency), string(in.ProbabilityMode))
}

func parseEstimatorQuery(c echo.Context, in *models.EstimatorInput) error {
	floats := []struct {
		name string
		dst  *float64
	}{
		{"node_price", &in.NodePriceFiat},
		{"running_cost", &in.RunningCostFiat},
		{"stake", &in.StakePerServer},
		{"custom_probability", &in.CustomProbabilityPercent},
		{"weekly_validations", &in.WeeklyValidationCount},
	}
	for _, f := range floats {
		raw := c.QueryParam(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value", f.name)
		}
		*f.dst = v
	}

	if raw := c.QueryParam("servers"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid servers value")
		}
		in.NumServers = n
	}

	return normalizeEnums(in, c.QueryParam("node_currency"), c.QueryParam("running_currency"), c.QueryParam("probability_mode"))
}

// normalizeEnums accepts any case for currencies and modes. Empty values are
// left for Sanitize to default.
func normalizeEnums(in *models.EstimatorInput, nodeCurrency, runningCurrency, mode string) error {
	for _, cur := range []struct {
		raw string
		dst *models.Currency
	}{
		{nodeCurrency, &in.NodeCurrency},
		{runningCurrency, &in.RunningCurrency},
	} {
		if cur.raw == "" {
			continue
		}
		parsed, err := models.ParseCurrency(cur.raw)
		if err != nil {
			return err
		}
		*cur.dst = parsed
	}

	if mode != "" {
		m, err := models.ParseProbabilityMode(mode)
		if err != nil {
			return err
		}
		in.ProbabilityMode = m
	}
	return nil
}
