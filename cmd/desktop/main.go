//go:build !js

// Command desktop runs the editor in a native window. The visible layer is
// drawn with ebiten; picking reads a software hit surface.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sqweek/dialog"

	"github.com/webcad/webcad/backend-go/internal/config"
	"github.com/webcad/webcad/backend-go/internal/editor"
	"github.com/webcad/webcad/backend-go/internal/render"
)

var modeKeys = map[ebiten.Key]editor.Mode{
	ebiten.KeyC: editor.ModeCursor,
	ebiten.KeyS: editor.ModeSquare,
	ebiten.KeyR: editor.ModeRectangle,
	ebiten.KeyL: editor.ModeLine,
	ebiten.KeyP: editor.ModePolygon,
	ebiten.KeyO: editor.ModePolygonPoints,
}

type Game struct {
	editor  *editor.Editor
	visible *ebitenSurface
	width   int
	height  int
	status  string
}

func NewGame(opts editor.Options) (*Game, error) {
	visible := newEbitenSurface(opts.Width, opts.Height, 1)
	hit, err := render.NewRaster(opts.Width, opts.Height, opts.HitLineWidth)
	if err != nil {
		return nil, err
	}
	ed, err := editor.New(visible, hit, opts)
	if err != nil {
		return nil, err
	}
	return &Game{
		editor:  ed,
		visible: visible,
		width:   opts.Width,
		height:  opts.Height,
	}, nil
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func (g *Game) Update() error {
	for key, mode := range modeKeys {
		if inpututil.IsKeyJustPressed(key) && !ctrl() {
			g.editor.SetMode(mode)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if _, ok := g.editor.FinishPolygon(); !ok {
			g.status = "polygon needs three points that are not collinear"
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.editor.ToConvexHull()
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.toggleAnimation()
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.load(nil)
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.save()
	case ctrl() && inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.open()
	}

	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(g.height-my)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.editor.PointerDown(x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.editor.PointerUp(x, y)
	case g.editor.Dragging():
		g.editor.PointerMove(x, y)
	}

	g.editor.Tick()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.visible.img, &ebiten.DrawImageOptions{})
	status := fmt.Sprintf("mode: %s  selected: %d", g.editor.Mode(), g.editor.Scene().SelectedID())
	if g.status != "" {
		status += "  " + g.status
	}
	ebitenutil.DebugPrintAt(screen, status, 8, 4)
}

func ctrl() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *Game) toggleAnimation() {
	sel := g.editor.Scene().Selected()
	if sel == nil {
		return
	}
	if err := g.editor.SetAttribute("animate-rotation", fmt.Sprint(!sel.AnimateRotation())); err != nil {
		g.status = err.Error()
	}
}

func (g *Game) save() {
	path, err := dialog.File().Filter("Drawing", "json").Title("Save drawing").Save()
	if errors.Is(err, dialog.ErrCancelled) {
		return
	}
	if err != nil {
		g.status = err.Error()
		return
	}
	data, err := g.editor.Save()
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		g.status = err.Error()
		return
	}
	g.status = "saved " + path
}

func (g *Game) open() {
	path, err := dialog.File().Filter("Drawing", "json").Title("Open drawing").Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return
	}
	if err != nil {
		g.status = err.Error()
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		g.status = err.Error()
		return
	}
	g.load(data)
}

// load replaces the drawing with data, or the sample when data is nil.
func (g *Game) load(data []byte) {
	confirm := func() bool {
		return dialog.Message("%s", "Discard the current drawing?").Title("Load drawing").YesNo()
	}
	if data == nil {
		if g.editor.Scene().Len() > 0 && !confirm() {
			return
		}
		g.editor.LoadSample()
		return
	}
	if err := g.editor.Load(data, confirm); err != nil && !errors.Is(err, editor.ErrLoadCancelled) {
		g.status = err.Error()
		return
	}
	g.status = ""
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	game, err := NewGame(cfg.EditorOptions())
	if err != nil {
		slog.Error("create editor", "error", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(game.width, game.height)
	ebiten.SetWindowTitle("webcad")
	if err := ebiten.RunGame(game); err != nil {
		slog.Error("run", "error", err)
		os.Exit(1)
	}
}
