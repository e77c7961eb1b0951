package swarm

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/sim"
)

// Visual characters for rendering
const (
	GlyphBrick    = '▒'
	GlyphQuestion = '?'
	GlyphEmptied  = '■'
	GlyphGround   = '█'
	GlyphHead     = 'o'
	GlyphDying    = 'x'
	GlyphFlat     = '_'
	GlyphShell    = 'O'
	GlyphCoin     = '$'
	GlyphMushroom = '♠'
	GlyphFlower   = '✿'
	GlyphStar     = '★'
	GlyphDebris   = '·'
	GlyphFireball = '*'
	GlyphSelf     = '@'
)

// Two walk frames per animated kind, picked by timer/8 parity.
var (
	goombaFrames = [2]rune{'m', 'n'}
	koopaFrames  = [2]rune{'K', 'k'}
)

var variantGlyphs = map[sim.Variant]rune{
	sim.VariantMario:    'M',
	sim.VariantLuigi:    'L',
	sim.VariantToad:     'T',
	sim.VariantPrincess: 'P',
}

var variantColors = map[sim.Variant]core.Color{
	sim.VariantMario:    core.ColorRed,
	sim.VariantLuigi:    core.ColorGreen,
	sim.VariantToad:     core.ColorBrightBlue,
	sim.VariantPrincess: core.ColorMagenta,
}

// starColors cycle while a player has star power.
var starColors = []core.Color{
	core.ColorBrightRed, core.ColorBrightYellow, core.ColorBrightGreen,
	core.ColorBrightCyan, core.ColorBrightBlue, core.ColorBrightMagenta,
}

// Render draws the HUD on the top row and the world below it.
func (g *Game) Render(dst *core.Screen) {
	if g.state == StateTooSmall {
		dst.DrawTextCentered(dst.Height()/2, "Terminal too small")
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("need %dx%d", minScreenW, minScreenH))
		return
	}

	g.renderHUD(dst)

	snap := g.engine.Snapshot()
	w := world{dst: dst, view: core.NewRect(0, 1, dst.Width(), dst.Height()-1), tile: snap.TileSize}
	for _, b := range snap.Blocks {
		w.drawBlock(b)
	}
	// Players last so the controlled one stays visible in a crowd.
	for _, e := range snap.Entities {
		if e.Kind != sim.KindPlayer {
			w.drawEntity(e)
		}
	}
	for _, e := range snap.Entities {
		if e.Kind == sim.KindPlayer && !e.Has(sim.FlagControlled) {
			w.drawEntity(e)
		}
	}
	if c, ok := g.engine.Controlled(); ok {
		w.drawEntity(c)
	}

	g.renderOverlay(dst)
}

func (g *Game) renderHUD(dst *core.Screen) {
	hearts := strings.Repeat("♥", g.lives)
	left := fmt.Sprintf("%s  Score: %d  Lives: %s", strings.ToUpper(g.Title()), g.score, hearts)
	dst.DrawTextColored(0, 0, left, core.ColorBrightWhite)

	if c, ok := g.engine.Controlled(); ok {
		var powers []string
		if c.Has(sim.FlagBig) {
			powers = append(powers, "BIG")
		}
		if c.Has(sim.FlagFire) {
			powers = append(powers, "FIRE")
		}
		if c.Has(sim.FlagStar) && c.StarUntil > g.frame {
			powers = append(powers, fmt.Sprintf("STAR(%d)", (c.StarUntil-g.frame)/60))
		}
		if len(powers) > 0 {
			right := strings.Join(powers, " ")
			dst.DrawTextColored(dst.Width()-len(right)-1, 0, right, core.ColorBrightYellow)
		}
	}
}

// world draws simulation tiles into the screen area below the HUD row.
// Sprites outside view are clipped so nothing overwrites the HUD.
type world struct {
	dst  *core.Screen
	view core.Rect
	tile float64
}

// cell maps a pixel position to a screen cell below the HUD row.
func (w world) cell(x, y float64) (int, int) {
	return int(math.Floor(x / w.tile)), int(math.Floor(y/w.tile)) + w.view.Y
}

func (w world) put(x, y int, r rune, c core.Color) {
	if w.view.Contains(x, y) {
		w.dst.SetColored(x, y, r, c)
	}
}

func (w world) drawBlock(b sim.Block) {
	x, y := w.cell(b.Pos.X, b.Pos.Y)
	switch b.Kind {
	case sim.BlockBrick:
		w.put(x, y, GlyphBrick, core.ColorOrange)
	case sim.BlockQuestion:
		w.put(x, y, GlyphQuestion, core.ColorBrightYellow)
	case sim.BlockEmptied:
		w.put(x, y, GlyphEmptied, core.ColorGray)
	case sim.BlockGround:
		w.put(x, y, GlyphGround, core.ColorYellow)
	}
}

func (w world) drawEntity(e sim.Entity) {
	ew, eh := e.Size()
	// Anchor on the bottom-center pixel so sprites sit on the tile they stand on.
	x, y := w.cell(e.Pos.X+ew/2, e.Pos.Y+eh-1)
	frame := int(e.Timer/8) % 2

	switch e.Kind {
	case sim.KindPlayer:
		w.drawPlayer(e, x, y)
	case sim.KindGoomba:
		switch {
		case e.Has(sim.FlagDying):
			w.put(x, y, GlyphDying, core.ColorOrange)
		case e.State == sim.GoombaFlat:
			w.put(x, y, GlyphFlat, core.ColorOrange)
		default:
			w.put(x, y, goombaFrames[frame], core.ColorOrange)
		}
	case sim.KindKoopa:
		switch {
		case e.Has(sim.FlagDying):
			w.put(x, y, GlyphDying, core.ColorGreen)
		case e.State == sim.KoopaWalk:
			w.put(x, y, koopaFrames[frame], core.ColorGreen)
		case e.State == sim.KoopaShellMoving:
			w.put(x, y, GlyphShell, core.ColorBrightGreen)
		default:
			w.put(x, y, GlyphShell, core.ColorGreen)
		}
	case sim.KindCoin:
		w.put(x, y, GlyphCoin, core.ColorBrightYellow)
	case sim.KindMushroom:
		w.put(x, y, GlyphMushroom, core.ColorBrightRed)
	case sim.KindFireFlower:
		w.put(x, y, GlyphFlower, core.ColorOrange)
	case sim.KindStar:
		w.put(x, y, GlyphStar, core.ColorBrightYellow)
	case sim.KindDebris:
		w.put(x, y, GlyphDebris, core.ColorOrange)
	case sim.KindFireball:
		w.put(x, y, GlyphFireball, core.ColorBrightRed)
	}
}

func (w world) drawPlayer(e sim.Entity, x, y int) {
	glyph := variantGlyphs[e.Variant]
	color := variantColors[e.Variant]
	if e.Has(sim.FlagControlled) {
		glyph = GlyphSelf
		color = core.ColorBrightWhite
	}
	switch {
	case e.Has(sim.FlagDying):
		glyph = GlyphDying
	case e.Has(sim.FlagStar):
		color = starColors[int(e.Timer/4)%len(starColors)]
	case e.Has(sim.FlagFire):
		color = core.ColorOrange
	}

	w.put(x, y, glyph, color)
	if e.Has(sim.FlagBig) && !e.Has(sim.FlagDying) {
		w.put(x, y-1, GlyphHead, color)
	}
}

// renderOverlay draws game state messages.
func (g *Game) renderOverlay(dst *core.Screen) {
	switch g.state {
	case StatePaused:
		drawCenteredBox(dst, "PAUSED", "P: resume  |  C: switch player")
	case StateGameOver:
		subtitle := fmt.Sprintf("Score: %d  |  Press R to restart", g.score)
		drawCenteredBox(dst, "GAME OVER", subtitle)
	}
}

// drawCenteredBox draws a centered message box.
func drawCenteredBox(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}
