package statushttp

import (
	"net/http"
	"strings"

	"aegis/internal/audit"
	"aegis/internal/position"
	"aegis/internal/trader"

	"github.com/gin-gonic/gin"
)

type PositionReader interface {
	Positions() []position.Position
	Position(symbol string) (position.Position, bool)
}

type AuditReader interface {
	Failures() int
	Tripped() bool
	Recent() []audit.Entry
}

type CycleReader interface {
	LastOutcomes() []trader.Outcome
}

type Router struct {
	positions PositionReader
	audit     AuditReader
	cycles    CycleReader
}

func NewRouter(p PositionReader, a AuditReader, c CycleReader) *Router {
	return &Router{positions: p, audit: a, cycles: c}
}

// Register mounts the query endpoints under group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/positions", r.handlePositions)
	group.GET("/positions/:symbol", r.handlePosition)
	group.GET("/audit", r.handleAudit)
	group.GET("/cycles", r.handleCycles)
}

func (r *Router) handlePositions(c *gin.Context) {
	items := r.positions.Positions()
	c.JSON(http.StatusOK, gin.H{"positions": items, "count": len(items)})
}

func (r *Router) handlePosition(c *gin.Context) {
	symbol := strings.TrimSpace(c.Param("symbol"))
	pos, ok := r.positions.Position(symbol)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"symbol": strings.ToLower(symbol), "status": position.StatusFlat})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": pos.Symbol, "status": position.StatusOpen, "position": pos})
}

func (r *Router) handleAudit(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"consecutive_failures": r.audit.Failures(),
		"tripped":              r.audit.Tripped(),
		"recent":               r.audit.Recent(),
	})
}

func (r *Router) handleCycles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cycles": r.cycles.LastOutcomes()})
}
