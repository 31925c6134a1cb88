package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmptyLevel is returned for a level file without any tiles.
	ErrEmptyLevel = errors.New("empty level")
	// ErrRaggedLevel is returned when rows differ in width.
	ErrRaggedLevel = errors.New("ragged level")
)

// ParseLevel reads a level: one row of space-separated tile codes per line,
// 1 for wall and anything else for ground. Blank lines are ignored. The
// first row fixes the width.
func ParseLevel(r io.Reader) (*Tiles, error) {
	var (
		kinds []TileKind
		width int
		row   int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row++
		if width == 0 {
			width = len(fields)
		}
		if len(fields) != width {
			return nil, fmt.Errorf("row %d has %d tiles, want %d: %w", row, len(fields), width, ErrRaggedLevel)
		}
		for _, f := range fields {
			code, err := strconv.Atoi(f)
			if err != nil {
				code = 0
			}
			kinds = append(kinds, tileFromCode(code))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	if len(kinds) == 0 {
		return nil, ErrEmptyLevel
	}
	return NewTiles(kinds, width), nil
}

// LoadLevel reads a level file from disk.
func LoadLevel(path string) (*Tiles, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level: %w", err)
	}
	defer f.Close()

	tiles, err := ParseLevel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tiles, nil
}

// GenerateLevel builds a w×h level with a wall border and scattered square
// wall blocks. The middle three rows stay open so a pair of werfs spawned
// on the centre line always has room.
func GenerateLevel(w, h int, rng *rand.Rand) *Tiles {
	t := NewGroundTiles(w, h)
	for x := 0; x < w; x++ {
		t.SetSquare(x, 0, 1, TileWallTop)
		t.SetSquare(x, h-1, 1, TileWallTop)
	}
	for y := 0; y < h; y++ {
		t.SetSquare(0, y, 1, TileWallTop)
		t.SetSquare(w-1, y, 1, TileWallTop)
	}

	blocks := w * h / 120
	for i := 0; i < blocks; i++ {
		size := 1 + rng.Intn(3)
		x := 1 + rng.Intn(max(1, w-2-size))
		y := 1 + rng.Intn(max(1, h-2-size))
		t.SetSquare(x, y, size, TileWallTop)
	}

	mid := h / 2
	for y := mid - 1; y <= mid+1; y++ {
		for x := 1; x < w-1; x++ {
			t.SetSquare(x, y, 1, TileGround)
		}
	}
	return t
}

// WriteLevel writes tiles in the format ParseLevel reads.
func WriteLevel(w io.Writer, t *Tiles) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < t.Len(); i++ {
		code := 0
		if t.At(i).IsWall() {
			code = 1
		}
		sep := " "
		if (i+1)%t.Width() == 0 || i == t.Len()-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(bw, "%02d%s", code, sep); err != nil {
			return fmt.Errorf("write level: %w", err)
		}
	}
	return bw.Flush()
}
