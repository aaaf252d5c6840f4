// Package bloodbanks provides the administrative REST handlers for blood bank records.
package bloodbanks

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/modules/auth"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/respond"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Handlers serves the /bloodbanks routes.
type Handlers struct {
	svc      *services.BloodBankService
	logger   *zap.Logger
	maxLimit int
}

// NewHandlers constructs Handlers. maxLimit <= 0 leaves page sizes unbounded.
func NewHandlers(svc *services.BloodBankService, logger *zap.Logger, maxLimit int) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{svc: svc, logger: logger, maxLimit: maxLimit}
}

// Register mounts the routes on router. Fixed segments go before :id.
func (h *Handlers) Register(router fiber.Router) {
	router.Get("/", h.List())
	router.Post("/", h.Create())
	router.Get("/id/:id", h.GetByID())
	router.Get("/code/:code", h.GetByCode())
	router.Get("/status/:status", h.ListByStatus())
	router.Get("/:id/stock", h.GetStock())
	router.Put("/:id/stock", h.UpdateStock())
	router.Get("/:id/requests", h.Requests())
	router.Put("/:id", h.Update())
	router.Delete("/:id", h.Delete())
	router.Post("/:id/activate", h.Activate())
	router.Post("/:id/suspend", h.Suspend())
	router.Post("/:id/reject", h.Reject())
}

func (h *Handlers) page(c *fiber.Ctx) (util.PageRequest, error) {
	return util.ParsePageRequest(c.Query("page"), c.Query("limit"), util.DefaultOrgPageSize, h.maxLimit)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	return respond.Error(c, h.logger, err)
}

// parseOptional decodes the body into out unless the body is empty.
func parseOptional(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return util.NewValidationError("Invalid request body")
	}
	return nil
}

// List handles GET /bloodbanks with status, city, state, dateFrom, dateTo and search filters.
func (h *Handlers) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := h.page(c)
		if err != nil {
			return h.fail(c, err)
		}
		window, err := util.ParseTimeRange(c.Query("dateFrom"), c.Query("dateTo"))
		if err != nil {
			return h.fail(c, err)
		}
		filter := store.OrgFilter{
			Status: model.Status(c.Query("status")),
			City:   c.Query("city"),
			State:  c.Query("state"),
			Search: c.Query("search"),
			Range:  window,
		}

		result, err := h.svc.List(c.UserContext(), filter, page)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood banks fetched successfully", result)
	}
}

// Create handles POST /bloodbanks.
func (h *Handlers) Create() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in services.CreateInput
		if err := c.BodyParser(&in); err != nil {
			return h.fail(c, util.NewValidationError("Invalid request body"))
		}
		org, err := h.svc.Create(c.UserContext(), in, auth.CurrentActor(c))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.Created(c, "Blood bank created successfully", org)
	}
}

// GetByID handles GET /bloodbanks/id/:id.
func (h *Handlers) GetByID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := h.svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank fetched successfully", org)
	}
}

// GetByCode handles GET /bloodbanks/code/:code.
func (h *Handlers) GetByCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		org, err := h.svc.GetByCode(c.UserContext(), c.Params("code"))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank fetched successfully", org)
	}
}

// ListByStatus handles GET /bloodbanks/status/:status.
func (h *Handlers) ListByStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := h.page(c)
		if err != nil {
			return h.fail(c, err)
		}
		result, err := h.svc.ListByStatus(c.UserContext(), c.Params("status"), page)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood banks fetched successfully", result)
	}
}

// GetStock handles GET /bloodbanks/:id/stock.
func (h *Handlers) GetStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := h.svc.Stock(c.UserContext(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood stock fetched successfully", snap)
	}
}

// UpdateStock handles PUT /bloodbanks/:id/stock with body {"bloodStock": {...}}.
func (h *Handlers) UpdateStock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body StockRequest
		if err := c.BodyParser(&body); err != nil {
			return h.fail(c, util.NewValidationError("Invalid request body"))
		}
		if body.BloodStock == nil {
			return h.fail(c, util.NewValidationError("bloodStock is required"))
		}
		snap, err := h.svc.UpdateStock(c.UserContext(), c.Params("id"), body.BloodStock, auth.CurrentActor(c))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood stock updated successfully", snap)
	}
}

// Requests handles GET /bloodbanks/:id/requests.
func (h *Handlers) Requests() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqs, err := h.svc.Requests(c.UserContext(), c.Params("id"))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Hospital requests fetched successfully", RequestsResponse{Requests: reqs, Count: len(reqs)})
	}
}

// Update handles PUT /bloodbanks/:id.
func (h *Handlers) Update() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields := map[string]interface{}{}
		if err := c.BodyParser(&fields); err != nil {
			return h.fail(c, util.NewValidationError("Invalid request body"))
		}
		org, err := h.svc.Update(c.UserContext(), c.Params("id"), fields, auth.CurrentActor(c))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank updated successfully", org)
	}
}

// Delete handles DELETE /bloodbanks/:id.
func (h *Handlers) Delete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.svc.Delete(c.UserContext(), c.Params("id"), auth.CurrentActor(c)); err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank deleted successfully", nil)
	}
}

// Activate handles POST /bloodbanks/:id/activate.
func (h *Handlers) Activate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var opts services.ActivateOptions
		if err := parseOptional(c, &opts); err != nil {
			return h.fail(c, err)
		}
		org, err := h.svc.Activate(c.UserContext(), c.Params("id"), opts, auth.CurrentActor(c))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank activated successfully", org)
	}
}

// Suspend handles POST /bloodbanks/:id/suspend.
func (h *Handlers) Suspend() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReasonRequest
		if err := parseOptional(c, &body); err != nil {
			return h.fail(c, err)
		}
		org, err := h.svc.Suspend(c.UserContext(), c.Params("id"), body.Reason, auth.CurrentActor(c))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank suspended successfully", org)
	}
}

// Reject handles POST /bloodbanks/:id/reject.
func (h *Handlers) Reject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReasonRequest
		if err := parseOptional(c, &body); err != nil {
			return h.fail(c, err)
		}
		org, err := h.svc.Reject(c.UserContext(), c.Params("id"), body.Reason, auth.CurrentActor(c))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Blood bank rejected successfully", org)
	}
}
