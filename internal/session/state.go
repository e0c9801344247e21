package session

import (
	"fmt"
	"strings"
)

// Status is the lifecycle status of a screening session.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusEnded        Status = "ended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInitializing, StatusActive, StatusCompleted, StatusEnded:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusEnded
}

// transitions lists the allowed targets for each status.
var transitions = map[Status][]Status{
	StatusInitializing: {StatusActive},
	StatusActive:       {StatusCompleted, StatusEnded},
}

// CanTransition reports whether from -> to follows the monotonic path
// initializing -> active -> {completed | ended}.
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Session phase labels. Phase is informational only.
const (
	PhaseIntake    = "intake"
	PhaseScreening = "screening"
	PhaseReview    = "review"
	PhaseReport    = "report"
	PhaseClosed    = "closed"
)

// Modality is one behavioral signal channel.
type Modality string

const (
	ModalityEmotion Modality = "emotion"
	ModalityMotion  Modality = "motion"
	ModalityVoice   Modality = "voice"
)

// Buffer capacities per modality. Emotion and motion share the larger window.
const (
	EmotionCapacity = 200
	MotionCapacity  = 200
	VoiceCapacity   = 100
)

// AllModalities returns the modalities in a fixed order.
func AllModalities() []Modality {
	return []Modality{ModalityEmotion, ModalityMotion, ModalityVoice}
}

// ParseModality maps a modality name onto a Modality. "gesture" is
// accepted as an alias for motion.
func ParseModality(name string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "emotion":
		return ModalityEmotion, nil
	case "motion", "gesture":
		return ModalityMotion, nil
	case "voice":
		return ModalityVoice, nil
	}
	return "", &ErrValidation{Field: "modality", Reason: fmt.Sprintf("unknown modality %q", name)}
}
