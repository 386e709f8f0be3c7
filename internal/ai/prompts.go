package ai

import (
	"fmt"
	"strings"

	"github.com/webeat/weve/internal/model"
)

const baseInstruction = "You are the writing assistant of WE:VE, an app for couples. " +
	"Write in Korean unless the user writes in another language. " +
	"Never invent names, dates or places the user did not give you."

var copyBriefs = map[model.CopyKind]string{
	model.CopyAnniversaryLetter: "a heartfelt anniversary letter to a partner, 150 to 300 words",
	model.CopyWeddingInvitation: "the greeting text of a wedding invitation card, 4 to 8 short lines",
	model.CopyThankYou:          "a thank-you message to wedding guests, under 120 words",
	model.CopyVow:               "personal wedding vows, 100 to 200 words",
	model.CopySNSCaption:        "three alternative social media captions, one per line, each under 80 characters",
}

var toneHints = map[string]string{
	"warm":    "warm and sincere",
	"playful": "light and playful",
	"formal":  "polite and formal",
	"poetic":  "lyrical and poetic",
}

// CopyPrompt returns the system instruction and user turn for a copy request
func CopyPrompt(mode model.Mode, req *model.CopyRequest) (string, string) {
	brief, ok := copyBriefs[model.CopyKind(req.Kind)]
	if !ok {
		brief = "a short message"
	}
	tone := toneHints[req.Tone]
	if tone == "" {
		tone = toneHints["warm"]
	}

	system := fmt.Sprintf("%s The couple is currently in the %s stage. Return only the requested text with no preamble.", baseInstruction, mode)

	var user strings.Builder
	fmt.Fprintf(&user, "Write %s. Tone: %s.", brief, tone)
	if d := strings.TrimSpace(req.Details); d != "" {
		fmt.Fprintf(&user, "\nDetails from the couple:\n%s", d)
	}
	return system, user.String()
}

// ChatPrompt returns the system instruction of the planning assistant
func ChatPrompt(mode model.Mode) string {
	var focus string
	switch mode {
	case model.ModeWedding:
		focus = "wedding preparation: budgets, vendors, guest lists, schedules and checklists"
	case model.ModeFamily:
		focus = "family life: household planning, anniversaries and time together"
	default:
		focus = "dating: date ideas, anniversaries, gifts and travel plans"
	}
	return fmt.Sprintf("%s You help the couple with %s. Keep answers practical and concise.", baseInstruction, focus)
}
