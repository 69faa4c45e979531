package domain

import (
	"encoding/base64"
	"strings"
)

// AnimationType enumerates the supported animation cycles.
type AnimationType string

const (
	AnimationWalk   AnimationType = "walk"
	AnimationRun    AnimationType = "run"
	AnimationJump   AnimationType = "jump"
	AnimationAttack AnimationType = "attack"
	AnimationIdle   AnimationType = "idle"
	AnimationDeath  AnimationType = "death"
	AnimationCast   AnimationType = "cast"
	AnimationDefend AnimationType = "defend"
)

// AnimationTypes lists every recognized animation type in display order.
var AnimationTypes = []AnimationType{
	AnimationWalk,
	AnimationRun,
	AnimationJump,
	AnimationAttack,
	AnimationIdle,
	AnimationDeath,
	AnimationCast,
	AnimationDefend,
}

// ParseAnimationType matches s case-insensitively against AnimationTypes.
func ParseAnimationType(s string) (AnimationType, bool) {
	candidate := AnimationType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range AnimationTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

const (
	MinAnimationFrames     = 2
	MaxAnimationFrames     = 8
	DefaultAnimationFrames = 8
)

// Sprite variation labels in the order they are produced.
const (
	LabelIdle        = "idle"
	LabelLeftFacing  = "left_facing"
	LabelRightFacing = "right_facing"
	LabelJumping     = "jumping"
	LabelCrouching   = "crouching"
	LabelAttacking   = "attacking"
	LabelBase        = "base"
)

// SpriteVariations are the poses generated after the idle base sprite.
var SpriteVariations = []string{
	LabelLeftFacing,
	LabelRightFacing,
	LabelJumping,
	LabelCrouching,
	LabelAttacking,
}

// Frame is one entry of a sprite set or animation. Exactly one of Image and
// Error is set; use SucceededFrame and FailedFrame to build it.
type Frame struct {
	Index     int    `json:"frame"`
	Label     string `json:"label"`
	Image     string `json:"image,omitempty"`
	Error     string `json:"error,omitempty"`
	SourceURL string `json:"source_url,omitempty"`

	data []byte
}

// SucceededFrame builds a frame holding image data. An empty payload yields a
// failed frame instead.
func SucceededFrame(index int, label string, data []byte, sourceURL string) Frame {
	if len(data) == 0 {
		return Frame{Index: index, Label: label, Error: ErrEmptyOutput.Error(), SourceURL: sourceURL}
	}
	return Frame{
		Index:     index,
		Label:     label,
		Image:     base64.StdEncoding.EncodeToString(data),
		SourceURL: sourceURL,
		data:      data,
	}
}

// FailedFrame builds a frame carrying the failure message of err.
func FailedFrame(index int, label string, err error) Frame {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Frame{Index: index, Label: label, Error: msg}
}

func (f Frame) OK() bool { return f.Error == "" && f.Image != "" }

// Data returns the raw image bytes of a successful frame.
func (f Frame) Data() []byte {
	if !f.OK() {
		return nil
	}
	if f.data != nil {
		return f.data
	}
	decoded, err := base64.StdEncoding.DecodeString(f.Image)
	if err != nil {
		return nil
	}
	return decoded
}

func countSucceeded(frames []Frame) int {
	n := 0
	for _, f := range frames {
		if f.OK() {
			n++
		}
	}
	return n
}

// SpriteSetResult is the response of a multi-pose sprite generation.
type SpriteSetResult struct {
	Description string  `json:"description"`
	Total       int     `json:"total_sprites"`
	Successful  int     `json:"successful"`
	Sprites     []Frame `json:"sprites"`
}

func NewSpriteSetResult(description string, frames []Frame) *SpriteSetResult {
	return &SpriteSetResult{
		Description: description,
		Total:       len(frames),
		Successful:  countSucceeded(frames),
		Sprites:     frames,
	}
}

// AnimationResult is the response of an animation frame generation.
type AnimationResult struct {
	AnimationType AnimationType `json:"animation_type"`
	Total         int           `json:"total_frames"`
	Successful    int           `json:"successful"`
	Frames        []Frame       `json:"frames"`
}

func NewAnimationResult(animationType AnimationType, frames []Frame) *AnimationResult {
	return &AnimationResult{
		AnimationType: animationType,
		Total:         len(frames),
		Successful:    countSucceeded(frames),
		Frames:        frames,
	}
}
