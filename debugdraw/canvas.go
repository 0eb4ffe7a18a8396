package debugdraw

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

// Half-block characters, two vertical pixels per cell.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
	BlockEmpty     = ' '
)

var _ Canvas = (*TerminalCanvas)(nil)

// CircleSegments is the number of line segments used to approximate a circle
const CircleSegments = 24

// TerminalCanvas rasterises world-space lines into a grid of half-block cells.
// World y grows upwards, so rows are flipped when mapping to pixels.
type TerminalCanvas struct {
	cols   int
	rows   int
	height int    // rows * 2
	pixels []bool // [y * cols + x]

	// world viewport mapped onto the pixel grid
	min    mgl64.Vec2
	max    mgl64.Vec2
	scaleX float64
	scaleY float64

	renderBuf strings.Builder
}

// NewTerminalCanvas creates a canvas of cols x rows cells showing the world
// rectangle spanned by viewMin and viewMax.
func NewTerminalCanvas(cols, rows int, viewMin, viewMax mgl64.Vec2) (*TerminalCanvas, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("canvas size %dx%d: must be positive", cols, rows)
	}
	if viewMax.X() <= viewMin.X() || viewMax.Y() <= viewMin.Y() {
		return nil, fmt.Errorf("viewport %v..%v: empty", viewMin, viewMax)
	}

	c := &TerminalCanvas{
		cols:   cols,
		rows:   rows,
		height: rows * 2,
		pixels: make([]bool, rows*2*cols),
		min:    viewMin,
		max:    viewMax,
	}
	c.updateScale()
	return c, nil
}

// NewStdoutCanvas sizes the canvas to the terminal attached to stdout
func NewStdoutCanvas(viewMin, viewMax mgl64.Vec2) (*TerminalCanvas, error) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return nil, fmt.Errorf("terminal size: %w", err)
	}
	return NewTerminalCanvas(cols, rows, viewMin, viewMax)
}

func (c *TerminalCanvas) updateScale() {
	c.scaleX = float64(c.cols-1) / (c.max.X() - c.min.X())
	c.scaleY = float64(c.height-1) / (c.max.Y() - c.min.Y())
}

// Resize keeps the viewport and changes the cell grid
func (c *TerminalCanvas) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	if cols != c.cols || rows != c.rows {
		c.cols = cols
		c.rows = rows
		c.height = rows * 2
		c.pixels = make([]bool, c.height*cols)
	}
	c.updateScale()
}

// Size returns the grid dimensions in cells
func (c *TerminalCanvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// Clear resets all pixels
func (c *TerminalCanvas) Clear() {
	clear(c.pixels)
}

// ToPixel maps a world point to pixel coordinates, which may be off-grid
func (c *TerminalCanvas) ToPixel(p mgl64.Vec2) (x, y int) {
	x = int(math.Round((p.X() - c.min.X()) * c.scaleX))
	y = int(math.Round((c.max.Y() - p.Y()) * c.scaleY))
	return x, y
}

// Pixel reports whether the pixel at (x, y) is set
func (c *TerminalCanvas) Pixel(x, y int) bool {
	if x < 0 || x >= c.cols || y < 0 || y >= c.height {
		return false
	}
	return c.pixels[y*c.cols+x]
}

func (c *TerminalCanvas) setPixel(x, y int) {
	if x >= 0 && x < c.cols && y >= 0 && y < c.height {
		c.pixels[y*c.cols+x] = true
	}
}

// DrawLine draws a world-space segment using Bresenham's algorithm
func (c *TerminalCanvas) DrawLine(a, b mgl64.Vec2) {
	x1, y1 := c.ToPixel(a)
	x2, y2 := c.ToPixel(b)

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(x1, y1)
		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawCircle approximates the circle with CircleSegments lines
func (c *TerminalCanvas) DrawCircle(center mgl64.Vec2, radius float64) {
	step := 2 * math.Pi / CircleSegments
	prev := center.Add(mgl64.Vec2{radius, 0})
	for i := 1; i <= CircleSegments; i++ {
		angle := float64(i) * step
		next := center.Add(mgl64.Vec2{radius * math.Cos(angle), radius * math.Sin(angle)})
		c.DrawLine(prev, next)
		prev = next
	}
}

// Render writes the grid as text lines, one per cell row
func (c *TerminalCanvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	c.renderBuf.Grow((c.cols*3 + 1) * c.rows)

	for row := 0; row < c.rows; row++ {
		top := row * 2 * c.cols
		bottom := top + c.cols
		for col := 0; col < c.cols; col++ {
			upper := c.pixels[top+col]
			lower := c.pixels[bottom+col]

			switch {
			case upper && lower:
				c.renderBuf.WriteRune(BlockFull)
			case upper:
				c.renderBuf.WriteRune(BlockUpperHalf)
			case lower:
				c.renderBuf.WriteRune(BlockLowerHalf)
			default:
				c.renderBuf.WriteRune(BlockEmpty)
			}
		}
		c.renderBuf.WriteByte('\n')
	}

	_, err := io.WriteString(w, c.renderBuf.String())
	return err
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
