package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/render"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
)

// CreateEntityRequest запрос на создание сущности
type CreateEntityRequest struct {
	Kind        string        `json:"kind"`
	Position    vec.Vec2Float `json:"position"`
	Velocity    vec.Vec2Float `json:"velocity"`
	HalfExtents vec.Vec2Float `json:"half_extents"`
	Density     *float64      `json:"density"`
	Gravity     bool          `json:"gravity"`
	Skin        string        `json:"skin"`
}

// VectorRequest позиция для move или толчок для nudge
type VectorRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func entityParam(c *gin.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func (rs *RestServer) handleListEntities(c *gin.Context) {
	list := rs.session.Entities()
	ok(c, http.StatusOK, "Список сущностей", gin.H{"entities": list, "total": len(list)})
}

func (rs *RestServer) handleCreateEntity(c *gin.Context) {
	var req CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	density := 1.0
	if req.Density != nil {
		density = *req.Density
	}
	snap, err := rs.session.CreateEntity(physics.EntitySpec{
		Kind:        req.Kind,
		Position:    req.Position,
		Velocity:    req.Velocity,
		HalfExtents: req.HalfExtents,
		Density:     density,
		Gravity:     req.Gravity,
		Skin:        render.SkinID(req.Skin),
	})
	if err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, "Сущность создана", snap)
}

func (rs *RestServer) handleGetEntity(c *gin.Context) {
	id, err := entityParam(c)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	snap, found := rs.session.Entity(id)
	if !found {
		rs.fail(c, http.StatusNotFound, world.ErrInvalidReference)
		return
	}
	ok(c, http.StatusOK, "Сущность", snap)
}

func (rs *RestServer) handleDeleteEntity(c *gin.Context) {
	id, err := entityParam(c)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := rs.session.DestroyEntity(id); err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Сущность удалена", nil)
}

func (rs *RestServer) handleMoveEntity(c *gin.Context) {
	rs.applyVector(c, rs.session.MoveEntity, "Сущность перемещена")
}

func (rs *RestServer) handleNudgeEntity(c *gin.Context) {
	rs.applyVector(c, rs.session.NudgeEntity, "Сущность получила толчок")
}

// applyVector общий разбор id и вектора для move и nudge
func (rs *RestServer) applyVector(c *gin.Context, apply func(uint64, vec.Vec2Float) error, message string) {
	id, err := entityParam(c)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	var req VectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := apply(id, vec.Vec2Float{X: req.X, Y: req.Y}); err != nil {
		rs.failErr(c, err)
		return
	}
	snap, _ := rs.session.Entity(id)
	ok(c, http.StatusOK, message, snap)
}
