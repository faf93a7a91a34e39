package eventbus

// TilePayload нагрузка tile.changed
type TilePayload struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type uint16 `json:"type"`
}

// EntityPayload нагрузка entity.created и entity.destroyed
type EntityPayload struct {
	ID   uint64  `json:"id"`
	Kind string  `json:"kind,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// WorldPayload нагрузка world.loaded и world.saved
type WorldPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Cells  int `json:"cells"`
}

// MinesPayload нагрузка событий сапера
type MinesPayload struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Opened int `json:"opened"`
}
