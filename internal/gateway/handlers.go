package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jiratools/internal/logging"
	"jiratools/internal/tools"
)

// HeaderCallID returns the registry call id of a tool invocation.
const HeaderCallID = "X-Tool-Call-Id"

type toolDTO struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Handler exposes registry tools.
type Handler struct {
	registry *tools.Registry
}

func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{registry: registry}
}

// Register attaches tool routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/tools", h.list)
	rg.POST("/tools/:name/call", h.call)
}

func (h *Handler) list(c *gin.Context) {
	all := h.registry.All()
	items := make([]toolDTO, 0, len(all))
	for _, t := range all {
		items = append(items, toolDTO{
			Name:        t.Name,
			Description: t.Description,
			Category:    string(t.Category),
			InputSchema: t.Schema.JSONSchema(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tools": items})
}

func (h *Handler) call(c *gin.Context) {
	name := c.Param("name")
	if !h.registry.Has(name) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "tool not found"})
		return
	}

	args, err := readArgs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	rec, err := h.registry.Call(c.Request.Context(), name, args)
	switch {
	case errors.Is(err, tools.ErrToolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "tool not found"})
		return
	case errors.Is(err, tools.ErrMissingRequiredArg):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	logging.Gateway("tool %s call=%s request=%s error=%v", name, rec.CallID, RequestID(c.Request.Context()), rec.Result.IsError)
	c.Header(HeaderCallID, rec.CallID)
	c.JSON(http.StatusOK, rec.Result)
}

// readArgs decodes the body as a JSON object. An empty body or null means no
// arguments.
func readArgs(c *gin.Context) (map[string]any, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal(body, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
