package memory

import "image"

// Tile is one chunk of an operation's requested output region.
type Tile struct {
	Index  int
	ChunkX int
	ChunkY int
	Rect   image.Rectangle
}

// SplitTiles divides rect into a row-major grid of chunkSize squares. Edge
// tiles are clipped to rect. An empty rect yields no tiles.
func SplitTiles(rect image.Rectangle, chunkSize int) []Tile {
	rect = rect.Canon()
	if rect.Empty() {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = max(rect.Dx(), rect.Dy())
	}

	cols := (rect.Dx() + chunkSize - 1) / chunkSize
	rows := (rect.Dy() + chunkSize - 1) / chunkSize
	tiles := make([]Tile, 0, cols*rows)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			minPt := rect.Min.Add(image.Pt(cx*chunkSize, cy*chunkSize))
			r := image.Rectangle{Min: minPt, Max: minPt.Add(image.Pt(chunkSize, chunkSize))}.Intersect(rect)
			tiles = append(tiles, Tile{Index: len(tiles), ChunkX: cx, ChunkY: cy, Rect: r})
		}
	}
	return tiles
}
