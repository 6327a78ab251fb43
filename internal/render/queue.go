package render

import "github.com/questforge/engine/internal/geom"

// Kind discriminates the draw command variants.
type Kind uint8

const (
	KindTileBatch Kind = iota // precomputed static tile batch
	KindTile                  // single tile, drawn every frame
	KindSprite                // entity sprite
)

// TileRef places one tile pattern at a destination rectangle. The
// pattern repeats to fill the destination when it is larger than the
// pattern size.
type TileRef struct {
	Pattern int32
	Dst     geom.Rectangle
}

// Batch is a precomputed run of static tiles covering one region of one
// layer. The renderer clips the tiles to Region, so a tile straddling
// two regions may appear in both batches.
type Batch struct {
	Layer  int32
	Region geom.Rectangle
	Tiles  []TileRef
}

// SpriteRef places one animation frame of a named sprite.
type SpriteRef struct {
	Name  string
	Frame int32
	Dst   geom.Rectangle
}

// Command is one ordered draw instruction. The renderer consuming the
// queue owns pixel output; the engine only guarantees ordering.
type Command struct {
	Kind   Kind
	Layer  int32
	Batch  *Batch    // set for KindTileBatch
	Tile   TileRef   // set for KindTile
	Sprite SpriteRef // set for KindSprite
}

// Queue collects the draw commands of one frame in order. The backing
// slice is reused across frames via Reset, so a frame on the hot path
// allocates nothing once the queue has warmed up.
type Queue struct {
	cmds []Command
}

// NewQueue returns a queue with room for about one frame of commands.
func NewQueue() *Queue {
	return &Queue{cmds: make([]Command, 0, 256)}
}

// Reset drops all commands, keeping the backing slice.
func (q *Queue) Reset() {
	q.cmds = q.cmds[:0]
}

// PushBatch appends a static tile batch command.
func (q *Queue) PushBatch(layer int32, b *Batch) {
	q.cmds = append(q.cmds, Command{Kind: KindTileBatch, Layer: layer, Batch: b})
}

// PushTile appends a single-tile command.
func (q *Queue) PushTile(layer int32, t TileRef) {
	q.cmds = append(q.cmds, Command{Kind: KindTile, Layer: layer, Tile: t})
}

// PushSprite appends an entity sprite command.
func (q *Queue) PushSprite(layer int32, s SpriteRef) {
	q.cmds = append(q.cmds, Command{Kind: KindSprite, Layer: layer, Sprite: s})
}

// Commands returns the commands pushed since the last Reset, in order.
// The slice is valid until the next Reset.
func (q *Queue) Commands() []Command {
	return q.cmds
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	return len(q.cmds)
}
