package anim

import (
	"time"
)

// DefaultWidth is the screen width in runes that the target chat
// channel renders per row. The wire format depends on it, so all
// built-in sprites use it too.
const DefaultWidth = 26

// Background is the glyph filling every cell a sprite does not cover.
const Background = '▒'

// Frame is one rendered animation frame: an ordered set of
// fixed-width text lines. Frames are never mutated after generation.
type Frame []string

// Sprite is the unscrolled source bitmap: equal-width text lines.
type Sprite []string

// Width returns the sprite width in runes (0 for an empty sprite).
func (s Sprite) Width() int {
	if len(s) == 0 {
		return 0
	}
	return len([]rune(s[0]))
}

// Animation is a named, ordered frame sequence with resolved timing.
type Animation struct {
	Name       string
	Frames     []Frame
	SkipFrames int
	FrameDelay time.Duration
}

// Scroll generates the frames of a sprite translating horizontally
// across a screen of the given rune width, from fully off-screen left
// to fully off-screen right inclusive. For sprite width S it produces
// exactly width+S+1 frames, each with the sprite's line count and
// exactly width runes per line. The first and last frames are pure
// background. Output depends only on the inputs.
func Scroll(sprite Sprite, width int) []Frame {
	spriteWidth := sprite.Width()
	rows := make([][]rune, len(sprite))
	for i, line := range sprite {
		rows[i] = []rune(line)
	}

	frames := make([]Frame, 0, width+spriteWidth+1)
	for pos := -spriteWidth; pos <= width; pos++ {
		frame := make(Frame, len(rows))
		for i, row := range rows {
			line := make([]rune, width)
			for x := 0; x < width; x++ {
				sx := x - pos
				if sx >= 0 && sx < spriteWidth {
					line[x] = row[sx]
				} else {
					line[x] = Background
				}
			}
			frame[i] = string(line)
		}
		frames = append(frames, frame)
	}
	return frames
}
