package image

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"spritegen/internal/domain"
)

const identityClause = "Keep the exact same character: identical face, outfit, colors, proportions and pixel art style. Transparent background."

// SpriteBasePrompt builds the prompt for the idle base sprite of a set.
func SpriteBasePrompt(description string) string {
	return strings.Join([]string{
		fmt.Sprintf("Pixel art game sprite of %s.", cleanDescription(description)),
		"8-bit retro style, full body, standing idle pose, facing the viewer, centered in frame.",
		"Crisp pixel edges, limited color palette, no anti-aliasing, transparent background.",
	}, " ")
}

// StylizedSpritePrompt builds the prompt for a single standalone sprite.
func StylizedSpritePrompt(description string) string {
	return strings.Join([]string{
		fmt.Sprintf("Stylized pixel art sprite of %s for a 2D video game.", cleanDescription(description)),
		"8-bit look, bold outline, vibrant limited palette, full body, centered.",
		"Transparent background, no text, no frame.",
	}, " ")
}

var variationTemplates = map[string]string{
	domain.LabelLeftFacing:  "Turn %s to face left in a side view profile, standing pose.",
	domain.LabelRightFacing: "Turn %s to face right in a side view profile, standing pose.",
	domain.LabelJumping:     "Show %s mid-jump with knees tucked and arms raised.",
	domain.LabelCrouching:   "Show %s crouching low, knees bent, ready to spring.",
	domain.LabelAttacking:   "Show %s performing an attack with its weapon or fists extended forward.",
}

// SpriteVariationPrompt builds the edit prompt for one named pose.
func SpriteVariationPrompt(description, variation string) (string, error) {
	tmpl, ok := variationTemplates[variation]
	if !ok {
		return "", domain.NewValidationError("variation", fmt.Sprintf("unknown sprite variation %q", variation))
	}
	subject := "the character"
	if d := cleanDescription(description); d != "" {
		subject = fmt.Sprintf("the character (%s)", d)
	}
	return fmt.Sprintf(tmpl, subject) + " " + identityClause, nil
}

// FramesPerAnimation is the number of frame instructions per animation type.
const FramesPerAnimation = 3

type framePrompt struct {
	Name        string
	Instruction string
}

var animationFrames = map[domain.AnimationType][FramesPerAnimation]framePrompt{
	domain.AnimationWalk: {
		{"contact", "Move the character into the contact pose of a walk: front heel touching the ground, back leg extended."},
		{"passing", "Move the character into the passing pose of a walk: legs crossing under the body, one foot lifted."},
		{"push_off", "Move the character into the push-off pose of a walk: back foot pushing, front leg swinging forward."},
	},
	domain.AnimationRun: {
		{"stride", "Move the character into a running stride: body leaning forward, legs wide apart, arms pumping."},
		{"airborne", "Move the character into the airborne phase of a run: both feet off the ground, knees driven up."},
		{"landing", "Move the character into the landing phase of a run: one foot striking the ground, body compressed."},
	},
	domain.AnimationJump: {
		{"crouch", "Move the character into a jump anticipation crouch: knees deeply bent, arms swung back."},
		{"rise", "Move the character into the rising part of a jump: body stretched upward, arms raised, feet leaving the ground."},
		{"peak", "Move the character to the peak of a jump: legs tucked, body suspended in the air."},
	},
	domain.AnimationAttack: {
		{"windup", "Move the character into an attack wind-up: weapon or fist pulled back, weight on the back foot."},
		{"strike", "Move the character into the strike of an attack: weapon or fist fully extended, motion lines allowed."},
		{"recover", "Move the character into attack recovery: weapon returning, stance steadying."},
	},
	domain.AnimationIdle: {
		{"inhale", "Make the character breathe in: chest slightly raised, shoulders lifted by one pixel."},
		{"hold", "Make the character hold the breath: neutral standing pose with a subtle blink."},
		{"exhale", "Make the character breathe out: shoulders slightly lowered, relaxed posture."},
	},
	domain.AnimationDeath: {
		{"hit", "Show the character reeling from a fatal hit: head thrown back, body twisting."},
		{"fall", "Show the character falling: knees buckling, body tipping toward the ground."},
		{"down", "Show the character lying defeated on the ground."},
	},
	domain.AnimationCast: {
		{"gather", "Show the character gathering magic: hands drawn together, faint glow forming."},
		{"channel", "Show the character channeling a spell: arms raised, bright magical energy swirling."},
		{"release", "Show the character releasing the spell: arms thrust forward, burst of magic leaving the hands."},
	},
	domain.AnimationDefend: {
		{"brace", "Show the character bracing to defend: shield or arms raising, feet planted."},
		{"block", "Show the character blocking: shield or arms fully up in front of the body."},
		{"impact", "Show the character absorbing an impact while blocking: slight knockback, sparks at the point of contact."},
	},
}

var titleCaser = cases.Title(language.English)

// AnimationFramePrompt returns the edit prompt for frameIndex (0-based) of
// animationType.
func AnimationFramePrompt(animationType domain.AnimationType, frameIndex int) (string, error) {
	if t, ok := domain.ParseAnimationType(string(animationType)); ok {
		animationType = t
	}
	frames, ok := animationFrames[animationType]
	if !ok {
		return "", &domain.ValidationError{
			Field:   "animation_type",
			Message: fmt.Sprintf("unknown animation type %q", animationType),
			Err:     domain.ErrUnknownAnimationType,
		}
	}
	if frameIndex < 0 || frameIndex >= FramesPerAnimation {
		return "", domain.NewValidationError("frame", fmt.Sprintf("frame index %d out of range [0,%d]", frameIndex, FramesPerAnimation-1))
	}
	frame := frames[frameIndex]
	return fmt.Sprintf("%s animation, frame %d of %d. %s %s",
		titleCaser.String(string(animationType)), frameIndex+1, FramesPerAnimation, frame.Instruction, identityClause), nil
}

// AnimationFrameName returns the short label of frameIndex of animationType.
func AnimationFrameName(animationType domain.AnimationType, frameIndex int) string {
	frames, ok := animationFrames[animationType]
	if !ok || frameIndex < 0 || frameIndex >= FramesPerAnimation {
		return fmt.Sprintf("frame_%d", frameIndex+1)
	}
	return frames[frameIndex].Name
}

// AnimationStepPrompt returns the prompt for the step-th generated frame
// (0-based). Steps beyond the template table cycle through it again.
func AnimationStepPrompt(animationType domain.AnimationType, step int) (string, string, error) {
	if step < 0 {
		return "", "", domain.NewValidationError("frame", fmt.Sprintf("negative step %d", step))
	}
	idx := step % FramesPerAnimation
	prompt, err := AnimationFramePrompt(animationType, idx)
	if err != nil {
		return "", "", err
	}
	name := AnimationFrameName(animationType, idx)
	if pass := step / FramesPerAnimation; pass > 0 {
		prompt += fmt.Sprintf(" Repeat of the cycle, pass %d: vary the pose subtly so the loop stays fluid.", pass+1)
		name = fmt.Sprintf("%s_%d", name, pass+1)
	}
	return prompt, name, nil
}

func cleanDescription(description string) string {
	return strings.Join(strings.Fields(description), " ")
}
