// Package cli provides the windowed jukebox.
// It polls input, advances the jukebox once per 50Hz frame and draws the
// tune list while audio is pulled from the player by oto.
package cli

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/user-none/pisplay/jukebox"
	"github.com/user-none/pisplay/player"
	"github.com/user-none/pisplay/ui"
)

// Logical screen size.
const (
	ScreenWidth  = 640
	ScreenHeight = 480
)

// Tune list layout. The debug font is 6x16.
const (
	glyphWidth = 6
	listY      = 96
	rowHeight  = 18
	numStars   = 20
)

var starColors = [...]color.RGBA{
	{0x30, 0x30, 0x30, 0xff},
	{0x50, 0x50, 0x50, 0xff},
	{0x80, 0x80, 0x80, 0xff},
	{0xc0, 0xc0, 0xc0, 0xff},
}

type star struct {
	x, y  int
	plane int // 0 is the dimmest and moves fastest
}

// Runner wraps a player and a jukebox for windowed mode.
type Runner struct {
	player      *player.Player
	jukebox     *jukebox.Jukebox
	audioPlayer *ui.AudioPlayer

	stars [numStars]star
	rng   *rand.Rand
	frame int
}

// NewRunner creates a runner and starts audio output. Audio
// initialization failure is non-fatal; the jukebox will run silently.
func NewRunner(p *player.Player, jb *jukebox.Jukebox, volume float64) *Runner {
	audio, err := ui.NewAudioPlayer(p, p.Config(), volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	}

	r := &Runner{
		player:      p,
		jukebox:     jb,
		audioPlayer: audio,
		rng:         rand.New(rand.NewPCG(1, 2)),
	}
	for i := range r.stars {
		r.stars[i] = star{
			x:     r.rng.IntN(ScreenWidth - 5),
			y:     r.rng.IntN(ScreenHeight - 1),
			plane: r.rng.IntN(4),
		}
	}
	return r
}

// Close stops audio output.
func (r *Runner) Close() {
	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// Update implements ebiten.Game. It runs at 50 ticks per second, one
// jukebox frame each.
func (r *Runner) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if ebiten.IsFocused() {
		r.pollInput()
	}

	r.jukebox.Frame()
	r.stepStars()
	r.frame++
	return nil
}

func (r *Runner) pollInput() {
	up := inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW)
	down := inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS)
	pause := inpututil.IsKeyJustPressed(ebiten.KeySpace)

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonLeftTop) {
			up = true
		}
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonLeftBottom) {
			down = true
		}
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight) {
			pause = true
		}
	}

	if up {
		r.jukebox.Up()
	}
	if down {
		r.jukebox.Down()
	}
	if pause {
		r.player.TogglePause()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if i, ok := r.tuneAt(x, y); ok {
			r.jukebox.Select(i)
		}
	}
}

// tuneRect returns the screen rectangle of tune i's title.
func (r *Runner) tuneRect(i int) image.Rectangle {
	title := r.jukebox.Tunes()[i].Title
	w := len(title) * glyphWidth
	x := (ScreenWidth - w) / 2
	y := listY + i*rowHeight
	return image.Rect(x, y, x+w, y+rowHeight-2)
}

func (r *Runner) tuneAt(x, y int) (int, bool) {
	p := image.Pt(x, y)
	for i := range r.jukebox.Tunes() {
		if p.In(r.tuneRect(i)) {
			return i, true
		}
	}
	return 0, false
}

func (r *Runner) stepStars() {
	for i := range r.stars {
		s := &r.stars[i]
		s.x -= 4 - s.plane
		if s.x < 0 {
			s.x = ScreenWidth - 5
			s.y = r.rng.IntN(ScreenHeight - 1)
			s.plane = r.rng.IntN(4)
		}
	}
}

func fillRect(dst *ebiten.Image, rect image.Rectangle, c color.Color) {
	dst.SubImage(rect).(*ebiten.Image).Fill(c)
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	for _, s := range r.stars {
		fillRect(screen, image.Rect(s.x, s.y, s.x+6, s.y+2), starColors[s.plane])
	}

	title := "P I S P L A Y"
	ebitenutil.DebugPrintAt(screen, title, (ScreenWidth-len(title)*glyphWidth)/2, 40)

	st := r.jukebox.State()
	for i, t := range r.jukebox.Tunes() {
		rect := r.tuneRect(i)
		switch {
		case i == st.Highlighted:
			g := uint8(127 + ((r.frame << 2) & 0x7f))
			fillRect(screen, rect.Inset(-2), color.RGBA{0, g, 127, 0xff})
		case i == st.Playing:
			fillRect(screen, rect.Inset(-2), color.RGBA{0x40, 0x40, 0x40, 0xff})
		}
		ebitenutil.DebugPrintAt(screen, t.Title, rect.Min.X, rect.Min.Y)
	}

	ps := r.player.Status()
	state := "playing"
	switch {
	case ps.Held:
		state = "paused"
	case !ps.Playing:
		state = "stopped"
	}
	line := fmt.Sprintf("%s  pos %02d/%02d  row %02d  speed %d", state, ps.Position, ps.OrderLength, ps.Row, ps.Speed)
	ebitenutil.DebugPrintAt(screen, line, 8, ScreenHeight-20)

	// Play time bar
	if st.MaxFrames > 0 {
		w := min(ScreenWidth-16, (ScreenWidth-16)*st.PlayedFrames/st.MaxFrames)
		fillRect(screen, image.Rect(8, ScreenHeight-4, 8+w, ScreenHeight-2), color.RGBA{0, 0xa0, 0x80, 0xff})
	}
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
