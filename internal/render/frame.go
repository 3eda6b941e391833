// Package render draws debug frames of combat snapshots: actor boxes,
// HP bars and the live hit envelope of every projectile.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/mrbrackebusch-code/wave-defense-hero-engine-v18/internal/game"

	"github.com/fogleman/gg"
)

// MaxScale bounds the zoom so a request cannot allocate a huge canvas
const MaxScale = 8

// Palette
var (
	colorBackground = color.RGBA{12, 12, 28, 255}
	colorGrid       = color.RGBA{30, 30, 45, 255}
	colorHero       = color.RGBA{83, 170, 255, 255}
	colorHeroDead   = color.RGBA{90, 90, 100, 255}
	colorGrunt      = color.RGBA{255, 149, 0, 255}
	colorBrute      = color.RGBA{255, 62, 62, 255}
	colorSlowed     = color.RGBA{120, 200, 255, 255}
	colorWeakened   = color.RGBA{180, 120, 255, 255}
	colorArc        = color.RGBA{255, 220, 80, 160}
	colorThrust     = color.RGBA{255, 255, 255, 230}
	colorSpell      = color.RGBA{190, 90, 255, 200}
	colorHealSpell  = color.RGBA{83, 255, 69, 200}
	colorBeam       = color.RGBA{83, 255, 69, 255}
	colorHPBack     = color.RGBA{51, 51, 51, 255}
	colorHPGood     = color.RGBA{83, 255, 69, 255}
	colorHPLow      = color.RGBA{255, 62, 62, 255}
)

// Renderer draws snapshots at a fixed integer zoom.
type Renderer struct {
	Scale    float64
	DrawGrid bool
}

// NewRenderer creates a renderer clamped to 1..MaxScale
func NewRenderer(scale int) *Renderer {
	scale = min(max(scale, 1), MaxScale)
	return &Renderer{Scale: float64(scale), DrawGrid: true}
}

// Frame draws snap and returns the image.
func (r *Renderer) Frame(snap *game.GameSnapshot) image.Image {
	w := max(1, int(math.Ceil(snap.Width*r.Scale)))
	h := max(1, int(math.Ceil(snap.Height*r.Scale)))
	dc := gg.NewContext(w, h)

	dc.SetColor(colorBackground)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	dc.Scale(r.Scale, r.Scale)
	if r.DrawGrid {
		r.drawGrid(dc, snap.Width, snap.Height)
	}

	for i := range snap.Projectiles {
		r.drawProjectile(dc, &snap.Projectiles[i])
	}
	for i := range snap.Enemies {
		r.drawEnemy(dc, &snap.Enemies[i])
	}
	for i := range snap.Heroes {
		r.drawHero(dc, &snap.Heroes[i])
	}
	return dc.Image()
}

// PNG draws snap and encodes it
func (r *Renderer) PNG(snap *game.GameSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Frame(snap)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawGrid(dc *gg.Context, width, height float64) {
	const step = 32
	dc.SetColor(colorGrid)
	dc.SetLineWidth(1)
	for x := 0.0; x <= width; x += step {
		dc.DrawLine(x, 0, x, height)
		dc.Stroke()
	}
	for y := 0.0; y <= height; y += step {
		dc.DrawLine(0, y, width, y)
		dc.Stroke()
	}
}

func (r *Renderer) drawHero(dc *gg.Context, h *game.HeroSnapshot) {
	if h.Dead {
		dc.SetColor(colorHeroDead)
	} else {
		dc.SetColor(colorHero)
	}
	dc.DrawRectangle(h.X-h.W/2, h.Y-h.H/2, h.W, h.H)
	dc.Fill()

	// Facing tick
	fx, fy := facingVector(h.Facing)
	dc.SetColor(color.White)
	dc.SetLineWidth(1)
	dc.DrawLine(h.X, h.Y, h.X+fx*h.W, h.Y+fy*h.H)
	dc.Stroke()

	drawHPBar(dc, h.X, h.Y-h.H/2-3, h.W, h.HP, h.MaxHP)
}

func (r *Renderer) drawEnemy(dc *gg.Context, e *game.EnemySnapshot) {
	switch {
	case e.Slowed:
		dc.SetColor(colorSlowed)
	case e.Weakened:
		dc.SetColor(colorWeakened)
	case e.Kind == game.EnemyBrute.String():
		dc.SetColor(colorBrute)
	default:
		dc.SetColor(colorGrunt)
	}
	dc.DrawRectangle(e.X-e.W/2, e.Y-e.H/2, e.W, e.H)
	dc.Fill()

	drawHPBar(dc, e.X, e.Y-e.H/2-3, e.W, e.HP, e.MaxHP)
}

func (r *Renderer) drawProjectile(dc *gg.Context, p *game.ProjectileSnapshot) {
	switch p.Kind {
	case game.KindArcSwing.String():
		// Annular sector: outer arc forward, inner arc back
		dc.SetColor(colorArc)
		dc.NewSubPath()
		dc.DrawArc(p.X, p.Y, p.Outer, p.Angle-p.HalfArc, p.Angle+p.HalfArc)
		dc.LineTo(p.X+p.Inner*math.Cos(p.Angle+p.HalfArc), p.Y+p.Inner*math.Sin(p.Angle+p.HalfArc))
		dc.DrawArc(p.X, p.Y, p.Inner, p.Angle+p.HalfArc, p.Angle-p.HalfArc)
		dc.ClosePath()
		dc.Fill()

	case game.KindThrust.String():
		nx, ny := math.Cos(p.Angle), math.Sin(p.Angle)
		dc.SetColor(colorThrust)
		dc.SetLineWidth(2 * game.ThrustHalfWidth)
		dc.DrawLine(p.X+nx*p.Back, p.Y+ny*p.Back, p.X+nx*p.Front, p.Y+ny*p.Front)
		dc.Stroke()

	case game.KindSpell.String():
		if p.Heal {
			dc.SetColor(colorHealSpell)
		} else {
			dc.SetColor(colorSpell)
		}
		dc.DrawCircle(p.X, p.Y, 2)
		dc.Fill()
		if p.State == game.SpellDetonated && p.Radius > 0 {
			dc.SetLineWidth(1)
			dc.DrawCircle(p.X, p.Y, p.Radius)
			dc.Stroke()
		}

	case game.KindSupportBeam.String():
		dc.SetColor(colorBeam)
		dc.DrawCircle(p.X, p.Y, 1.5)
		dc.Fill()
		if p.TargetX != 0 || p.TargetY != 0 {
			dc.SetLineWidth(0.5)
			dc.DrawLine(p.X, p.Y, p.TargetX, p.TargetY)
			dc.Stroke()
		}
	}
}

func drawHPBar(dc *gg.Context, cx, y, width float64, hp, maxHP int) {
	if maxHP <= 0 {
		return
	}
	pct := math.Max(0, math.Min(1, float64(hp)/float64(maxHP)))

	dc.SetColor(colorHPBack)
	dc.DrawRectangle(cx-width/2, y, width, 1.5)
	dc.Fill()

	if pct > 0.3 {
		dc.SetColor(colorHPGood)
	} else {
		dc.SetColor(colorHPLow)
	}
	dc.DrawRectangle(cx-width/2, y, width*pct, 1.5)
	dc.Fill()
}

func facingVector(name string) (float64, float64) {
	switch name {
	case "left":
		return -1, 0
	case "up":
		return 0, -1
	case "down":
		return 0, 1
	default:
		return 1, 0
	}
}
