// Package snake implements the Snake game on a flip-dot display.
//
// The game is pure sequential logic driven by Step: the owner calls
// Step at the current game speed and feeds direction changes from
// whatever input source it has. Rendering goes through the display's
// diff engine, so each tick only flips the dots that moved.
package snake

import (
	"image"
	"math/rand"
	"time"

	"github.com/flipdisc/flipdot/imagebit"
)

// Display is the subset of the flip-dot driver the game needs.
type Display interface {
	Bounds() image.Rectangle
	Update(*imagebit.Image) error
}

// Direction of snake travel.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// opposite reports whether o would reverse d into the snake's own neck.
func (d Direction) opposite(o Direction) bool {
	switch d {
	case Up:
		return o == Down
	case Down:
		return o == Up
	case Left:
		return o == Right
	case Right:
		return o == Left
	}
	return false
}

// State of the game.
type State int

const (
	Init State = iota
	Running
	Paused
	Over
)

const (
	maxLength     = 50
	initialLength = 3

	// directionBufferSize bounds how many queued direction changes a
	// fast player can stack up between ticks.
	directionBufferSize = 8

	// InitialSpeed is the starting tick interval. Every level shaves
	// SpeedStep off it, down to MinSpeed.
	InitialSpeed = 500 * time.Millisecond
	SpeedStep    = 50 * time.Millisecond
	MinSpeed     = 100 * time.Millisecond
)

type position struct {
	x, y int
}

// Game holds one Snake session. It is not safe for concurrent use; the
// owner serializes Step and ChangeDirection, mirroring the single
// caller that drives the display.
type Game struct {
	display Display
	rnd     *rand.Rand
	w, h    int

	// segments[0] is the head.
	segments  []position
	direction Direction
	pending   []Direction

	food       position
	foodActive bool

	state State
	score int
	level int
	speed time.Duration
}

// New creates a game for the given display. rnd is used for food
// placement; nil uses the shared math/rand source.
func New(display Display, rnd *rand.Rand) *Game {
	b := display.Bounds()
	g := &Game{
		display: display,
		rnd:     rnd,
		w:       b.Dx(),
		h:       b.Dy(),
	}
	g.Reset()
	return g
}

// Reset returns the game to its initial state: a three-segment snake in
// the center of the field heading right, fresh food, score zero.
func (g *Game) Reset() {
	g.state = Init
	g.score = 0
	g.level = 1
	g.speed = InitialSpeed
	g.direction = Right
	g.pending = g.pending[:0]

	startX, startY := g.w/2, g.h/2
	g.segments = g.segments[:0]
	for i := 0; i < initialLength; i++ {
		g.segments = append(g.segments, position{x: startX - i, y: startY})
	}

	g.foodActive = false
	g.placeFood()
}

// Start begins (or restarts) play.
func (g *Game) Start() {
	g.state = Running
}

// Pause suspends a running game.
func (g *Game) Pause() {
	if g.state == Running {
		g.state = Paused
	}
}

// Resume continues a paused game.
func (g *Game) Resume() {
	if g.state == Paused {
		g.state = Running
	}
}

// State returns the current game state.
func (g *Game) State() State {
	return g.state
}

// Score returns the current score.
func (g *Game) Score() int {
	return g.score
}

// Level returns the current level.
func (g *Game) Level() int {
	return g.level
}

// Speed returns the current tick interval.
func (g *Game) Speed() time.Duration {
	return g.speed
}

// ChangeDirection queues a direction change. Changes apply one per
// tick; reversals into the snake's own neck are dropped at apply time.
// The queue is bounded and extra input is discarded.
func (g *Game) ChangeDirection(d Direction) {
	if len(g.pending) >= directionBufferSize {
		return
	}
	g.pending = append(g.pending, d)
}

// Step advances the game by one tick and renders the result. It does
// nothing unless the game is running.
func (g *Game) Step() error {
	if g.state != Running {
		return nil
	}

	tailBefore := g.segments[len(g.segments)-1]
	g.move()

	if g.collided() {
		g.state = Over
		return nil
	}

	if g.foodActive && g.segments[0] == g.food {
		g.foodActive = false
		if len(g.segments) < maxLength {
			g.segments = append(g.segments, tailBefore)
		}
		g.score += 10
		if g.score%50 == 0 {
			g.level++
			if g.speed > MinSpeed {
				g.speed -= SpeedStep
				if g.speed < MinSpeed {
					g.speed = MinSpeed
				}
			}
		}
		g.placeFood()
	}

	return g.Render()
}

// move applies at most one buffered direction change and advances every
// segment by one cell.
func (g *Game) move() {
	if len(g.pending) > 0 {
		next := g.pending[0]
		g.pending = g.pending[1:]
		if !g.direction.opposite(next) {
			g.direction = next
		}
	}

	head := g.segments[0]
	switch g.direction {
	case Up:
		head.y--
	case Down:
		head.y++
	case Left:
		head.x--
	case Right:
		head.x++
	}

	copy(g.segments[1:], g.segments)
	g.segments[0] = head
}

// collided reports whether the head left the field or bit the body.
func (g *Game) collided() bool {
	head := g.segments[0]
	if head.x < 0 || head.x >= g.w || head.y < 0 || head.y >= g.h {
		return true
	}
	for _, s := range g.segments[1:] {
		if s == head {
			return true
		}
	}
	return false
}

// inSnake reports whether pos is occupied by any segment.
func (g *Game) inSnake(pos position) bool {
	for _, s := range g.segments {
		if s == pos {
			return true
		}
	}
	return false
}

// placeFood picks a random free cell for the food. After too many
// collisions with the snake it falls back to the first free cell in
// scan order; on a full field the food stays inactive.
func (g *Game) placeFood() {
	const maxAttempts = 200

	intn := rand.Intn
	if g.rnd != nil {
		intn = g.rnd.Intn
	}

	for i := 0; i < maxAttempts; i++ {
		pos := position{x: intn(g.w), y: intn(g.h)}
		if !g.inSnake(pos) {
			g.food = pos
			g.foodActive = true
			return
		}
	}

	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			pos := position{x: x, y: y}
			if !g.inSnake(pos) {
				g.food = pos
				g.foodActive = true
				return
			}
		}
	}
	g.foodActive = false
}

// Render draws the current field to the display.
func (g *Game) Render() error {
	return g.display.Update(g.frame())
}

// frame rasterizes the snake and the food into a fresh full frame.
func (g *Game) frame() *imagebit.Image {
	img := imagebit.New(image.Rect(0, 0, g.w, g.h))
	for _, s := range g.segments {
		img.SetBit(s.x, s.y, imagebit.On)
	}
	if g.foodActive {
		img.SetBit(g.food.x, g.food.y, imagebit.On)
	}
	return img
}

// ShowGameOver draws the game-over cross. The caller decides how long
// to hold it.
func (g *Game) ShowGameOver() error {
	img := imagebit.New(image.Rect(0, 0, g.w, g.h))
	for x := 2; x < g.w-2; x++ {
		img.SetBit(x, g.h/2, imagebit.On)
	}
	for y := 2; y < g.h-2; y++ {
		img.SetBit(g.w/2, y, imagebit.On)
	}
	return g.display.Update(img)
}

// ShowStartScreen draws the attract banner shown while waiting for the
// first input.
func (g *Game) ShowStartScreen() error {
	img := imagebit.New(image.Rect(0, 0, g.w, g.h))
	for y := 2; y <= 4 && y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			img.SetBit(x, y, imagebit.On)
		}
	}
	return g.display.Update(img)
}
