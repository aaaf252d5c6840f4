// Package logs provides the REST handlers for querying the administrative audit trail.
package logs

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Premkambaliya/Hack-The-Winter/internal/services"
	"github.com/Premkambaliya/Hack-The-Winter/internal/store"
	"github.com/Premkambaliya/Hack-The-Winter/model"
	"github.com/Premkambaliya/Hack-The-Winter/restapi/respond"
	"github.com/Premkambaliya/Hack-The-Winter/util"
)

// Handlers serves the /logs routes.
type Handlers struct {
	svc      *services.AuditService
	logger   *zap.Logger
	maxLimit int
}

// NewHandlers constructs Handlers. maxLimit <= 0 leaves page sizes unbounded.
func NewHandlers(svc *services.AuditService, logger *zap.Logger, maxLimit int) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{svc: svc, logger: logger, maxLimit: maxLimit}
}

// Register mounts the routes on router. /stats and /recent go before /:logId.
func (h *Handlers) Register(router fiber.Router) {
	router.Get("/", h.FindAll())
	router.Get("/stats", h.Stats())
	router.Get("/recent", h.Recent())
	router.Get("/by-entity-type/:entityType", h.ByEntityType())
	router.Get("/by-action/:action", h.ByAction())
	router.Get("/by-entity-code/:entityCode", h.ByEntityCode())
	router.Get("/:logId", h.FindByID())
}

func (h *Handlers) page(c *fiber.Ctx) (util.PageRequest, error) {
	return util.ParsePageRequest(c.Query("page"), c.Query("limit"), util.DefaultAuditPageSize, h.maxLimit)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	return respond.Error(c, h.logger, err)
}

// FindAll handles GET /logs.
func (h *Handlers) FindAll() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := h.page(c)
		if err != nil {
			return h.fail(c, err)
		}
		window, err := util.ParseTimeRange(c.Query("dateFrom"), c.Query("dateTo"))
		if err != nil {
			return h.fail(c, err)
		}
		filter := store.AuditFilter{
			EntityType:      model.EntityType(c.Query("entityType")),
			Action:          model.Action(c.Query("action")),
			PerformedBy:     c.Query("performedBy"),
			PerformedByRole: c.Query("performedByRole"),
			Status:          c.Query("status"),
			EntityCode:      c.Query("entityCode"),
			Range:           window,
		}

		result, err := h.svc.FindAll(c.UserContext(), filter, page)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Audit logs fetched successfully", result)
	}
}

// FindByID handles GET /logs/:logId.
func (h *Handlers) FindByID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry, err := h.svc.FindByID(c.UserContext(), c.Params("logId"))
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Audit log fetched successfully", entry)
	}
}

// ByEntityType handles GET /logs/by-entity-type/:entityType.
func (h *Handlers) ByEntityType() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := h.page(c)
		if err != nil {
			return h.fail(c, err)
		}
		result, err := h.svc.FindByEntityType(c.UserContext(), c.Params("entityType"), page)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Audit logs fetched successfully", result)
	}
}

// ByAction handles GET /logs/by-action/:action.
func (h *Handlers) ByAction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := h.page(c)
		if err != nil {
			return h.fail(c, err)
		}
		result, err := h.svc.FindByAction(c.UserContext(), c.Params("action"), page)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Audit logs fetched successfully", result)
	}
}

// ByEntityCode handles GET /logs/by-entity-code/:entityCode.
func (h *Handlers) ByEntityCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := h.page(c)
		if err != nil {
			return h.fail(c, err)
		}
		result, err := h.svc.FindByEntityCode(c.UserContext(), c.Params("entityCode"), page)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Entity history fetched successfully", result)
	}
}

// Stats handles GET /logs/stats.
func (h *Handlers) Stats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		window, err := util.ParseTimeRange(c.Query("dateFrom"), c.Query("dateTo"))
		if err != nil {
			return h.fail(c, err)
		}
		stats, err := h.svc.GetStats(c.UserContext(), window)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Audit statistics fetched successfully", stats)
	}
}

// Recent handles GET /logs/recent.
func (h *Handlers) Recent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := util.ParsePositiveInt("limit", c.Query("limit"), util.DefaultRecentLimit)
		if err != nil {
			return h.fail(c, err)
		}
		if h.maxLimit > 0 && limit > h.maxLimit {
			limit = h.maxLimit
		}
		recent, err := h.svc.GetRecentActivity(c.UserContext(), limit)
		if err != nil {
			return h.fail(c, err)
		}
		return respond.OK(c, "Recent activity fetched successfully", recent)
	}
}
