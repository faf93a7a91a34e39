package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/tile"
)

// maxSaveBody ограничение размера загружаемого сохранения
const maxSaveBody = 64 << 20

// SetTileRequest запрос на смену типа клетки
type SetTileRequest struct {
	Type tile.TypeID `json:"type"`
}

// TileResponse клетка с координатами
type TileResponse struct {
	X    int        `json:"x"`
	Y    int        `json:"y"`
	Cell world.Cell `json:"cell"`
}

func (rs *RestServer) handleWorldInfo(c *gin.Context) {
	ok(c, http.StatusOK, "Мир", rs.session.Info())
}

// handleWorldSave отдает текстовое сохранение сетки
func (rs *RestServer) handleWorldSave(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := rs.session.WriteJSON(c.Writer); err != nil {
		rs.logger.Error("Ошибка выгрузки мира: %v", err)
	}
}

// handleWorldLoad заменяет сетку сохранением из тела запроса
func (rs *RestServer) handleWorldLoad(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSaveBody))
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := rs.session.ReadJSON(data); err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Мир загружен", rs.session.Info())
}

var errNoSnapshots = errors.New("хранилище снимков не подключено")

func (rs *RestServer) handleListSnapshots(c *gin.Context) {
	if rs.snapshots == nil {
		rs.fail(c, http.StatusNotImplemented, errNoSnapshots)
		return
	}
	list, err := rs.snapshots.ListSnapshots(c.Request.Context(), rs.worldName)
	if err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Список снимков", gin.H{"snapshots": list, "total": len(list)})
}

func (rs *RestServer) handleCreateSnapshot(c *gin.Context) {
	if rs.snapshots == nil {
		rs.fail(c, http.StatusNotImplemented, errNoSnapshots)
		return
	}
	var info storage.SnapshotInfo
	err := rs.session.Do(func(g *world.Grid, _ *physics.Simulation) error {
		var err error
		info, err = rs.snapshots.SaveGrid(c.Request.Context(), rs.worldName, g)
		return err
	})
	if err != nil {
		rs.failErr(c, err)
		return
	}
	rs.logger.Info("Снимок %s создан (%d байт)", info.ID, info.Size)
	ok(c, http.StatusCreated, "Снимок создан", info)
}

func (rs *RestServer) handleRestoreSnapshot(c *gin.Context) {
	if rs.snapshots == nil {
		rs.fail(c, http.StatusNotImplemented, errNoSnapshots)
		return
	}
	id := c.Param("id")
	var info storage.SnapshotInfo
	err := rs.session.Do(func(g *world.Grid, _ *physics.Simulation) error {
		var err error
		info, err = rs.snapshots.LoadSnapshot(c.Request.Context(), rs.worldName, id, g)
		return err
	})
	if err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Снимок восстановлен", info)
}

func (rs *RestServer) handleDeleteSnapshot(c *gin.Context) {
	if rs.snapshots == nil {
		rs.fail(c, http.StatusNotImplemented, errNoSnapshots)
		return
	}
	if err := rs.snapshots.DeleteSnapshot(c.Request.Context(), rs.worldName, c.Param("id")); err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Снимок удален", nil)
}

// cellParams разбирает :x и :y
func cellParams(c *gin.Context) (int, int, error) {
	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(c.Param("y"))
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func (rs *RestServer) handleGetTile(c *gin.Context) {
	x, y, err := cellParams(c)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	cell, err := rs.session.Tile(x, y)
	if err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Клетка", TileResponse{X: x, Y: y, Cell: cell})
}

func (rs *RestServer) handleSetTile(c *gin.Context) {
	x, y, err := cellParams(c)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	var req SetTileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := rs.session.SetTile(x, y, req.Type); err != nil {
		// неизвестный тип - ошибка запроса, а не отсутствующий ресурс
		if errors.Is(err, world.ErrInvalidReference) {
			rs.fail(c, http.StatusBadRequest, err)
			return
		}
		rs.failErr(c, err)
		return
	}
	cell, _ := rs.session.Tile(x, y)
	ok(c, http.StatusOK, "Клетка изменена", TileResponse{X: x, Y: y, Cell: cell})
}

func (rs *RestServer) handleClearTile(c *gin.Context) {
	x, y, err := cellParams(c)
	if err != nil {
		rs.fail(c, http.StatusBadRequest, err)
		return
	}
	if err := rs.session.SetTile(x, y, tile.EmptyID); err != nil {
		rs.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "Клетка очищена", nil)
}
