package snake

import (
	"image"
	"math/rand"
	"testing"

	"github.com/flipdisc/flipdot/imagebit"
)

// fakeDisplay records every frame pushed to it.
type fakeDisplay struct {
	bounds image.Rectangle
	frames []*imagebit.Image
}

func (f *fakeDisplay) Bounds() image.Rectangle {
	return f.bounds
}

func (f *fakeDisplay) Update(img *imagebit.Image) error {
	f.frames = append(f.frames, img)
	return nil
}

func (f *fakeDisplay) last() *imagebit.Image {
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

func newTestGame(w, h int) (*Game, *fakeDisplay) {
	d := &fakeDisplay{bounds: image.Rect(0, 0, w, h)}
	return New(d, rand.New(rand.NewSource(1))), d
}

func TestNewGame(t *testing.T) {
	g, _ := newTestGame(28, 13)

	if g.State() != Init {
		t.Errorf("state = %v, want Init", g.State())
	}
	if g.Score() != 0 || g.Level() != 1 {
		t.Errorf("score/level = %d/%d, want 0/1", g.Score(), g.Level())
	}
	if g.Speed() != InitialSpeed {
		t.Errorf("speed = %v, want %v", g.Speed(), InitialSpeed)
	}
	if len(g.segments) != initialLength {
		t.Fatalf("length = %d, want %d", len(g.segments), initialLength)
	}
	// Centered, heading right, body trailing left.
	head := g.segments[0]
	if head != (position{x: 14, y: 6}) {
		t.Errorf("head = %v, want {14 6}", head)
	}
	for i, s := range g.segments {
		if s != (position{x: 14 - i, y: 6}) {
			t.Errorf("segment %d = %v, want {%d 6}", i, s, 14-i)
		}
	}
	if !g.foodActive {
		t.Error("no food placed")
	}
	if g.inSnake(g.food) {
		t.Error("food placed on the snake")
	}
}

func TestStepOnlyRunsWhenRunning(t *testing.T) {
	g, d := newTestGame(28, 13)

	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(d.frames) != 0 {
		t.Error("Step rendered while in Init state")
	}

	g.Start()
	g.Pause()
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(d.frames) != 0 {
		t.Error("Step rendered while paused")
	}

	g.Resume()
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(d.frames) != 1 {
		t.Errorf("Step rendered %d frames while running, want 1", len(d.frames))
	}
}

func TestMovement(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.Start()

	head := g.segments[0]
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.segments[0] != (position{x: head.x + 1, y: head.y}) {
		t.Errorf("head = %v, want one cell right of %v", g.segments[0], head)
	}
	if len(g.segments) != initialLength {
		t.Errorf("length changed to %d without eating", len(g.segments))
	}

	g.ChangeDirection(Down)
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.segments[0] != (position{x: head.x + 1, y: head.y + 1}) {
		t.Errorf("head = %v after turning down", g.segments[0])
	}
}

func TestReversalIsBlocked(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.Start()

	head := g.segments[0]
	g.ChangeDirection(Left) // reversal of Right
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.segments[0] != (position{x: head.x + 1, y: head.y}) {
		t.Errorf("head = %v, reversal should keep heading right", g.segments[0])
	}
	if g.State() != Running {
		t.Errorf("state = %v, want Running", g.State())
	}
}

func TestBufferedDirectionsApplyOnePerTick(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.Start()

	g.ChangeDirection(Down)
	g.ChangeDirection(Left)
	head := g.segments[0]

	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.segments[0] != (position{x: head.x, y: head.y + 1}) {
		t.Errorf("tick 1 head = %v, want down from %v", g.segments[0], head)
	}
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.segments[0] != (position{x: head.x - 1, y: head.y + 1}) {
		t.Errorf("tick 2 head = %v, want left", g.segments[0])
	}
}

func TestDirectionBufferIsBounded(t *testing.T) {
	g, _ := newTestGame(28, 13)
	for i := 0; i < directionBufferSize*2; i++ {
		g.ChangeDirection(Down)
	}
	if len(g.pending) != directionBufferSize {
		t.Errorf("buffer length = %d, want %d", len(g.pending), directionBufferSize)
	}
}

func TestWallCollisionEndsGame(t *testing.T) {
	g, _ := newTestGame(8, 5)
	g.Start()

	// Head starts at x=4 on an 8-wide field; four steps right hit the
	// wall.
	for i := 0; i < 3; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if g.State() != Running {
			t.Fatalf("game over after %d steps, head %v", i+1, g.segments[0])
		}
	}
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.State() != Over {
		t.Errorf("state = %v after hitting the wall, want Over", g.State())
	}
}

func TestSelfCollisionEndsGame(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.Start()

	// Force a five-segment snake and curl it back into its own body.
	g.segments = []position{
		{x: 10, y: 6}, {x: 9, y: 6}, {x: 8, y: 6}, {x: 7, y: 6}, {x: 6, y: 6},
	}
	g.direction = Right
	g.foodActive = false

	for i, dir := range []Direction{Down, Left, Up} {
		g.ChangeDirection(dir)
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if i < 2 && g.State() != Running {
			t.Fatalf("game ended prematurely at turn %d, head %v", i, g.segments[0])
		}
	}
	if g.State() != Over {
		t.Errorf("state = %v after biting itself, want Over", g.State())
	}
}

func TestEatingGrowsAndScores(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.Start()

	// Plant the food directly in the snake's path.
	head := g.segments[0]
	g.food = position{x: head.x + 1, y: head.y}
	g.foodActive = true
	tailBefore := g.segments[len(g.segments)-1]

	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(g.segments) != initialLength+1 {
		t.Errorf("length = %d after eating, want %d", len(g.segments), initialLength+1)
	}
	if g.segments[len(g.segments)-1] != tailBefore {
		t.Errorf("new tail = %v, want the pre-move tail %v", g.segments[len(g.segments)-1], tailBefore)
	}
	if g.Score() != 10 {
		t.Errorf("score = %d, want 10", g.Score())
	}
	if !g.foodActive {
		t.Error("no new food after eating")
	}
	if g.inSnake(g.food) {
		t.Error("new food placed on the snake")
	}
}

func TestLevelUpAcceleratesGame(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.Start()

	// Five foods reach score 50 and the first level-up.
	for i := 0; i < 5; i++ {
		head := g.segments[0]
		next := position{x: head.x, y: head.y}
		switch g.direction {
		case Right:
			next.x++
		case Down:
			next.y++
		case Left:
			next.x--
		case Up:
			next.y--
		}
		g.food = next
		g.foodActive = true
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if g.State() != Running {
			t.Fatalf("game over during feeding at score %d", g.Score())
		}
	}

	if g.Score() != 50 {
		t.Fatalf("score = %d, want 50", g.Score())
	}
	if g.Level() != 2 {
		t.Errorf("level = %d, want 2", g.Level())
	}
	if g.Speed() != InitialSpeed-SpeedStep {
		t.Errorf("speed = %v, want %v", g.Speed(), InitialSpeed-SpeedStep)
	}
}

func TestSpeedFloor(t *testing.T) {
	g, _ := newTestGame(28, 13)
	g.speed = MinSpeed
	g.score = 40
	g.Start()

	head := g.segments[0]
	g.food = position{x: head.x + 1, y: head.y}
	g.foodActive = true
	if err := g.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if g.Speed() != MinSpeed {
		t.Errorf("speed = %v, want floor %v", g.Speed(), MinSpeed)
	}
}

func TestRenderFrame(t *testing.T) {
	g, d := newTestGame(28, 13)
	if err := g.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	img := d.last()
	if img == nil {
		t.Fatal("no frame rendered")
	}
	for _, s := range g.segments {
		if !img.BitAt(s.x, s.y) {
			t.Errorf("segment (%d,%d) not drawn", s.x, s.y)
		}
	}
	if !img.BitAt(g.food.x, g.food.y) {
		t.Error("food not drawn")
	}
	on := 0
	for _, b := range img.Pix {
		if b {
			on++
		}
	}
	if on != len(g.segments)+1 {
		t.Errorf("%d dots on, want %d", on, len(g.segments)+1)
	}
}

func TestShowGameOverDrawsCross(t *testing.T) {
	g, d := newTestGame(28, 13)
	if err := g.ShowGameOver(); err != nil {
		t.Fatalf("ShowGameOver: %v", err)
	}
	img := d.last()
	if !img.BitAt(14, 6) {
		t.Error("cross center not drawn")
	}
	if !img.BitAt(2, 6) || !img.BitAt(25, 6) {
		t.Error("horizontal bar incomplete")
	}
	if !img.BitAt(14, 2) || !img.BitAt(14, 10) {
		t.Error("vertical bar incomplete")
	}
	if img.BitAt(0, 0) || img.BitAt(27, 12) {
		t.Error("corners should stay off")
	}
}

func TestResetAfterGameOver(t *testing.T) {
	g, _ := newTestGame(8, 5)
	g.Start()
	for g.State() != Over {
		if err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	g.Reset()
	if g.State() != Init {
		t.Errorf("state = %v after Reset, want Init", g.State())
	}
	if g.Score() != 0 || g.Level() != 1 || g.Speed() != InitialSpeed {
		t.Error("Reset did not restore score/level/speed")
	}
	if len(g.segments) != initialLength {
		t.Errorf("length = %d after Reset, want %d", len(g.segments), initialLength)
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{Up, "up"}, {Down, "down"}, {Left, "left"}, {Right, "right"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.d), got, tt.want)
		}
	}
}
