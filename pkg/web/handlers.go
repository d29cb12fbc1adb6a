package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/registry"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/services"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	validator        *validator.Validate
	registry         *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		validator:        validator,
		registry:         registry,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	wf, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	wf := &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Variables:   req.Variables,
		Metadata:    req.Metadata,
		Owner:       req.Owner,
		Tags:        req.Tags,
		Nodes:       []*models.WorkflowNode{},
		Connections: []*models.Connection{},
	}

	created, err := h.workflowService.Create(c.Context(), wf)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	// Partial update; nodes and connections are managed by the editor.
	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Variables != nil {
		existing.Variables = req.Variables
	}

	if req.Metadata != nil {
		existing.Metadata = req.Metadata
	}

	if req.Tags != nil {
		existing.Tags = req.Tags
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	result, err := h.workflowService.Validate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) PublishWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	published, err := h.workflowService.Publish(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) UnpublishWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	unpublished, err := h.workflowService.Unpublish(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(unpublished)
}

// ExecuteWorkflow runs a published workflow synchronously and returns
// the complete execution record.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}

		if err := h.validator.Struct(req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	execution, err := h.executionService.ExecuteWorkflow(c.Context(), id, services.ExecuteRequest{
		InputData:      req.InputData,
		Variables:      req.Variables,
		Timeout:        time.Duration(req.TimeoutSeconds) * time.Second,
		DeploymentID:   req.DeploymentID,
		ConversationID: req.ConversationID,
		Channel:        req.Channel,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.executionService.FetchExecution(c.Context(), id)
	if err != nil {
		if persistence.IsExecutionNotFound(err) {
			return notFound(c, "Execution not found")
		}

		return internalError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	if err := h.executionService.CancelExecution(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"cancelled": true, "execution_id": id})
}

func (h *APIHandlers) GetExecutionHistory(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return badRequest(c, "Invalid limit parameter")
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return badRequest(c, "Invalid offset parameter")
	}

	executions, err := h.executionService.GetExecutionHistory(c.Context(), id, limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": executions,
		"count":      len(executions),
	})
}

// GetScopeVariables exposes the merged variable view of a scope for
// debugging tools.
func (h *APIHandlers) GetScopeVariables(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Scope ID is required")
	}

	return c.JSON(fiber.Map{
		"scope_id":  id,
		"variables": h.executionService.GetAllVariables(id),
	})
}

func (h *APIHandlers) GetAccessLogs(c fiber.Ctx) error {
	filter := scope.LogFilter{
		Action:       models.AccessAction(c.Query("action")),
		VariableName: c.Query("variable_name"),
		ScopeID:      c.Query("scope_id"),
		NodeID:       c.Query("node_id"),
		ExecutionID:  c.Query("execution_id"),
	}

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return badRequest(c, "Invalid since parameter, expected RFC3339")
		}

		filter.Since = t
	}

	if until := c.Query("until"); until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return badRequest(c, "Invalid until parameter, expected RFC3339")
		}

		filter.Until = t
	}

	entries := h.executionService.GetAccessLogs(filter)

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetNodeTypes lists the registered node types and their schemas.
func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	types := h.registry.AvailableNodeTypes()
	items := make([]fiber.Map, 0, len(types))

	for _, nodeType := range types {
		factory, ok := h.registry.NodeFactory(nodeType)
		if !ok {
			continue
		}

		items = append(items, fiber.Map{
			"id":          factory.ID(),
			"name":        factory.Name(),
			"description": factory.Description(),
			"schema":      factory.Schema(),
		})
	}

	return c.JSON(fiber.Map{"node_types": items})
}

func queryInt(c fiber.Ctx, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
